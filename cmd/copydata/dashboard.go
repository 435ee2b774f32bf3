package main

import (
	"io"

	"github.com/artpar/copydata/tui/dashboard"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the terminal dashboard",
	Long: `Open an interactive view of the local application and unit buckets.

Keys: tab moves between buttons, enter presses, r refreshes, q quits.
The Refresh and Quit buttons also respond to the mouse.`,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	// The dashboard owns the terminal, so logs are dropped.
	a, err := newApp(io.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	local := a.Model.Local()
	return dashboard.Run(dashboard.New("copydata "+local.Unit, a.Charm.Views))
}
