package main

import (
	"fmt"
	"os"

	"github.com/artpar/copydata/bootstrap"
	"github.com/artpar/copydata/config"
	"github.com/spf13/cobra"
)

var (
	hotReload bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the inspection API server",
	Long: `Start the HTTP inspection API.

The server will:
  - Load configuration from copydata.yaml (or --config)
  - Or load configuration from COPYDATA_* environment variables
  - Open the configured relation data store
  - Serve /health, /status, /relations, /interfaces and /metrics
  - Reload leadership, relations and log level when the config file changes
    or on SIGHUP; becoming leader dispatches leader-elected

Examples:
  copydata serve
  copydata serve --config /etc/copydata/config.yaml
  copydata serve --hot-reload=false

  # env vars only:
  COPYDATA_APP=b-sink COPYDATA_LEADER=true copydata serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&hotReload, "hot-reload", true, "enable hot reload of configuration")
}

func runServe(cmd *cobra.Command, args []string) error {
	hasConfigFile := false
	if _, err := os.Stat(cfgFile); err == nil {
		hasConfigFile = true
	}

	// Hot reload only works with config file
	if !hasConfigFile || !hotReload {
		a, err := newApp(os.Stderr)
		if err != nil {
			return err
		}
		return a.Run(cmd.Context())
	}

	boot := bootstrap.NewLogger(config.LoggingConfig{Level: "info", Format: "console"}, os.Stderr)
	holder, err := config.NewHolder(cfgFile, boot)
	if err != nil {
		return err
	}
	defer holder.Stop()

	a, err := bootstrap.NewWithOptions(holder.Get(), bootstrap.Options{LogOutput: os.Stderr})
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	a.Watch(holder)

	if err := holder.WatchFile(); err != nil {
		a.Logger.Warn().Err(err).Msg("config file watch disabled")
	}
	holder.WatchSignals()

	return a.Run(cmd.Context())
}
