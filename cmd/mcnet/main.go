package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/huoshan017/mcnet/config"
	"github.com/huoshan017/mcnet/log"
)

var (
	configFlag   string
	logLevelFlag string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "mcnet",
		Short:         "Protocol client tools for 1.16.x game servers",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Path to an mcnet.toml file")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Override the log level (debug, info, warn, error, off)")

	rootCmd.AddCommand(
		pingCmd(),
		dumpCmd(),
		packetsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads --config and applies the log level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, err
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}
	log.SetLevel(cfg.LogLevel)
	return cfg, nil
}
