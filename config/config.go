// Package config loads mcnet settings from a TOML file.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/huoshan017/mcnet/common"
	"github.com/huoshan017/mcnet/packet"
)

// Duration is a time.Duration written as a string such as "10s" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the top-level configuration loaded from mcnet.toml.
type Config struct {
	Version       int      `toml:"version"`
	Strict        bool     `toml:"strict"`
	AutoKeepAlive bool     `toml:"auto_keep_alive"`
	LogLevel      string   `toml:"log_level"`
	Servers       []string `toml:"servers"`

	Timeouts TimeoutConfig `toml:"timeouts"`
	Socket   SocketConfig  `toml:"socket"`
	Capture  CaptureConfig `toml:"capture"`
	Metrics  MetricsConfig `toml:"metrics"`
}

type TimeoutConfig struct {
	Connect Duration `toml:"connect"`
	Read    Duration `toml:"read"`
	Write   Duration `toml:"write"`
}

type SocketConfig struct {
	RecvBuffer   int      `toml:"recv_buffer"`
	SendBuffer   int      `toml:"send_buffer"`
	NoDelay      bool     `toml:"no_delay"`
	KeepAlive    Duration `toml:"keep_alive"` // zero leaves TCP keep-alive off
	MaxFrameSize int      `toml:"max_frame_size"`
	ReuseAddr    bool     `toml:"reuse_addr"`
}

// CaptureConfig enables frame capture when Path is set.
type CaptureConfig struct {
	Path  string `toml:"path"`
	Codec string `toml:"codec"`
}

type MetricsConfig struct {
	Listen string `toml:"listen"` // e.g. "127.0.0.1:9108"
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Version:       int(packet.DefaultVersion),
		AutoKeepAlive: true,
		LogLevel:      "info",
		Timeouts: TimeoutConfig{
			Connect: Duration{common.DefaultConnectTimeout},
			Read:    Duration{common.DefaultReadTimeout},
			Write:   Duration{common.DefaultWriteTimeout},
		},
		Socket: SocketConfig{NoDelay: true},
	}
}

// Load reads path over the defaults and applies MCNET_LOG_LEVEL. An empty path yields
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.Errorf("%s: unknown key %q", path, undecoded[0].String())
		}
	}
	if level := os.Getenv("MCNET_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	supported := false
	for _, v := range packet.SupportedVersions() {
		if int(v) == c.Version {
			supported = true
		}
	}
	if !supported {
		return errors.Wrapf(packet.ErrUnsupportedVersion, "version %d", c.Version)
	}
	if c.Socket.MaxFrameSize < 0 || c.Socket.RecvBuffer < 0 || c.Socket.SendBuffer < 0 {
		return errors.New("socket sizes must not be negative")
	}
	return nil
}

// Options converts the configuration into connection options. Capture and metrics are
// wired by the caller, since they own files and listeners.
func (c *Config) Options() []common.Option {
	opts := []common.Option{
		common.WithVersion(packet.Version(c.Version)),
		common.WithStrict(c.Strict),
		common.WithAutoKeepAlive(c.AutoKeepAlive),
		common.WithNoDelay(c.Socket.NoDelay),
	}
	if c.Timeouts.Connect.Duration > 0 {
		opts = append(opts, common.WithConnectTimeout(c.Timeouts.Connect.Duration))
	}
	if c.Timeouts.Read.Duration > 0 {
		opts = append(opts, common.WithReadTimeout(c.Timeouts.Read.Duration))
	}
	if c.Timeouts.Write.Duration > 0 {
		opts = append(opts, common.WithWriteTimeout(c.Timeouts.Write.Duration))
	}
	if c.Socket.RecvBuffer > 0 {
		opts = append(opts, common.WithSockRecvBuffSize(c.Socket.RecvBuffer))
	}
	if c.Socket.SendBuffer > 0 {
		opts = append(opts, common.WithSockSendBuffSize(c.Socket.SendBuffer))
	}
	if c.Socket.KeepAlive.Duration > 0 {
		opts = append(opts, common.WithKeepAlived(true), common.WithKeepAlivedPeriod(c.Socket.KeepAlive.Duration))
	}
	if c.Socket.ReuseAddr {
		opts = append(opts, common.WithReuseAddr(true))
	}
	if c.Socket.MaxFrameSize > 0 {
		opts = append(opts, common.WithMaxFrameSize(c.Socket.MaxFrameSize))
	}
	return opts
}
