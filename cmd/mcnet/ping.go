package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/huoshan017/mcnet/capture"
	"github.com/huoshan017/mcnet/common"
	"github.com/huoshan017/mcnet/log"
	"github.com/huoshan017/mcnet/metrics"
	"github.com/huoshan017/mcnet/packet"
	"github.com/huoshan017/mcnet/pinger"
)

func pingCmd() *cobra.Command {
	var (
		metricsAddr  string
		capturePath  string
		captureCodec string
		interval     time.Duration
		parallel     int
		version      int
	)
	cmd := &cobra.Command{
		Use:   "ping [host[:port]...]",
		Short: "Query server status and latency",
		Long:  "Ping every server given on the command line, or the servers listed in the config file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if version != 0 {
				cfg.Version = version
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			if metricsAddr != "" {
				cfg.Metrics.Listen = metricsAddr
			}
			if capturePath != "" {
				cfg.Capture.Path = capturePath
			}
			if captureCodec != "" {
				cfg.Capture.Codec = captureCodec
			}
			addrs := args
			if len(addrs) == 0 {
				addrs = cfg.Servers
			}
			if len(addrs) == 0 {
				return errors.New("no servers given")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts := cfg.Options()
			if cfg.Capture.Path != "" {
				codec, err := capture.CodecByName(cfg.Capture.Codec)
				if err != nil {
					return err
				}
				rec, err := capture.Create(cfg.Capture.Path, codec, packet.Version(cfg.Version))
				if err != nil {
					return err
				}
				defer func() {
					n, size := rec.Stats()
					if err := rec.Close(); err != nil {
						log.Warnf("mcnet: closing capture: %v", err)
					}
					log.Infof("mcnet: captured %d frames (%s) to %s", n, humanize.Bytes(uint64(size)), cfg.Capture.Path)
				}()
				opts = append(opts, common.WithFrameObserver(rec))
			}
			if cfg.Metrics.Listen != "" {
				collector, err := metrics.New(nil)
				if err != nil {
					return err
				}
				opts = append(opts, common.WithFrameObserver(collector), common.WithEventHandler(collector.HandleEvent))
				srv := &http.Server{Addr: cfg.Metrics.Listen, Handler: metrics.Handler(nil), ReadHeaderTimeout: 5 * time.Second}
				go func() {
					if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						log.Errorf("mcnet: metrics listener: %v", err)
					}
				}()
				defer srv.Close()
				log.Infof("mcnet: serving metrics on %s", cfg.Metrics.Listen)
			}

			group := pinger.NewGroup(parallel, opts...)
			for {
				results, err := group.PingAll(ctx, addrs)
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return err
				}
				printResults(cmd.OutOrStdout(), results)
				if interval <= 0 {
					return nil
				}
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(interval):
				}
			}
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	cmd.Flags().StringVar(&capturePath, "capture", "", "Record every frame to this file")
	cmd.Flags().StringVar(&captureCodec, "capture-codec", "", "Capture record codec: msgpack, json or protobuf")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Repeat the ping at this interval until interrupted")
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 8, "Servers pinged at once")
	cmd.Flags().IntVar(&version, "protocol", 0, "Protocol version to announce (736 or 754)")
	return cmd
}

func printResults(out io.Writer, results []pinger.Result) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ADDRESS\tVERSION\tPROTOCOL\tPLAYERS\tLATENCY\tDESCRIPTION")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\terror: %v\n", r.Addr, r.Err)
			continue
		}
		latency := "-"
		if r.Info.Latency > 0 {
			latency = r.Info.Latency.Round(time.Millisecond).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\t%s\n", r.Addr, r.Info.VersionName,
			strconv.Itoa(r.Info.ProtocolVersion), r.Info.NumPlayers, r.Info.MaxPlayers, latency, r.Info.Description)
	}
	tw.Flush()
}
