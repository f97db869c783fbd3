package pinger

import (
	"context"
	"net"
	"sort"
	"strconv"

	cmap "github.com/orcaman/concurrent-map"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/huoshan017/mcnet/common"
)

// DefaultPort is used for addresses without a port.
const DefaultPort = 25565

// Result is the outcome of pinging one address.
type Result struct {
	Addr string
	Info PingInfo
	Err  error
}

// Group pings a list of servers concurrently, at most limit at a time.
type Group struct {
	limit   int
	options []common.Option
	results cmap.ConcurrentMap
}

func NewGroup(limit int, options ...common.Option) *Group {
	if limit <= 0 {
		limit = 8
	}
	return &Group{limit: limit, options: options, results: cmap.New()}
}

// SplitAddr parses "host[:port]".
func SplitAddr(addr string) (string, uint16, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		// no port
		if _, _, err2 := net.SplitHostPort(addr + ":0"); err2 == nil {
			return addr, DefaultPort, nil
		}
		return "", 0, errors.Wrapf(common.ErrNoAddress, "%q", addr)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return "", 0, errors.Wrapf(common.ErrNoAddress, "bad port in %q", addr)
	}
	if host == "" {
		return "", 0, errors.Wrapf(common.ErrNoAddress, "%q", addr)
	}
	return host, uint16(port), nil
}

// PingAll pings every address and returns the results in input order. Individual
// failures are reported per result; only ctx cancellation aborts the group.
func (g *Group) PingAll(ctx context.Context, addrs []string) ([]Result, error) {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.limit)
	for _, addr := range addrs {
		addr := addr
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			g.results.Set(addr, g.ping(ctx, addr))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(addrs))
	for _, addr := range addrs {
		if v, ok := g.results.Get(addr); ok {
			out = append(out, v.(Result))
		}
	}
	return out, nil
}

func (g *Group) ping(ctx context.Context, addr string) Result {
	res := Result{Addr: addr}
	host, port, err := SplitAddr(addr)
	if err != nil {
		res.Err = err
		return res
	}
	p, err := New(host, port, g.options...)
	if err != nil {
		res.Err = err
		return res
	}
	res.Info, res.Err = p.Ping(ctx)
	return res
}

// Last returns the most recent result for every address pinged by this group, sorted
// by address.
func (g *Group) Last() []Result {
	items := g.results.Items()
	out := make([]Result, 0, len(items))
	for _, v := range items {
		out = append(out, v.(Result))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Addr < out[j].Addr })
	return out
}
