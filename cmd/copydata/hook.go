package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	hookApp  string
	hookUnit string
)

var hookCmd = &cobra.Command{
	Use:   "hook <event>",
	Short: "Dispatch a lifecycle event",
	Long: `Dispatch a lifecycle event to the charm and print the resulting status.

Events:
  leader-elected
  feed-relation-changed
  sink-relation-changed   (--app names the remote application, --unit the
                           remote unit; without --unit the application
                           bucket is copied)

Examples:
  copydata hook leader-elected
  copydata hook sink-relation-changed --app a-feed
  copydata hook sink-relation-changed --app a-feed --unit a-feed/0`,
	Args: cobra.ExactArgs(1),
	RunE: runHook,
}

func init() {
	rootCmd.AddCommand(hookCmd)

	hookCmd.Flags().StringVar(&hookApp, "app", "", "remote application that changed")
	hookCmd.Flags().StringVar(&hookUnit, "unit", "", "remote unit that changed")
}

func runHook(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Hook(cmd.Context(), args[0], hookApp, hookUnit); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.Charm.Status())
	return nil
}
