package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var actionParams map[string]string

var actionCmd = &cobra.Command{
	Use:   "action <name>",
	Short: "Run an action with parameters",
	Long: `Run an action and print the resulting status.

Actions:
  configure-app    write the local application bucket (leader only)
  configure-unit   write the local unit bucket

Parameters are attribute names of relation-copy-data, given as text and
decoded with the attribute codec. Unknown names are ignored with a warning.

Examples:
  copydata action configure-app --param int=5 --param bool=true
  copydata action configure-unit --param privport=80,ipnet=10.0.0.0/8`,
	Args: cobra.ExactArgs(1),
	RunE: runAction,
}

func init() {
	rootCmd.AddCommand(actionCmd)

	actionCmd.Flags().StringToStringVarP(&actionParams, "param", "p", nil, "attribute=value (repeatable)")
}

func runAction(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Action(cmd.Context(), args[0], actionParams); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.Charm.Status())
	return nil
}
