package main

import (
	"fmt"
	"io"
	"os"

	"github.com/artpar/copydata/bootstrap"
	"github.com/artpar/copydata/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "copydata",
	Short: "Copy typed relation data from a feed application to a sink application",
	Long: `copydata runs one side of a relation-copy-data relation.

An application named *-feed publishes values through the configure-app and
configure-unit actions. An application named *-sink copies them into its own
buckets whenever the feed side changes.

Quick start:
  copydata action configure-app --param int=5   # on the feed
  copydata hook sink-relation-changed --app a-feed   # on the sink
  copydata status

Inspection:
  copydata doc        # attribute table of relation-copy-data
  copydata serve      # HTTP inspection API and /metrics
  copydata dashboard  # terminal dashboard`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "copydata.yaml", "config file path")
}

// newApp loads the configuration (file, or COPYDATA_* variables when the
// file is missing) and builds the application.
func newApp(logOutput io.Writer) (*bootstrap.App, error) {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return nil, err
	}
	return bootstrap.NewWithOptions(cfg, bootstrap.Options{LogOutput: logOutput})
}
