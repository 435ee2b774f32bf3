package main

import (
	"fmt"

	"github.com/artpar/copydata/core/registry"
	"github.com/artpar/copydata/interfaces/copydata"
	"github.com/spf13/cobra"
)

var docAll bool

var docCmd = &cobra.Command{
	Use:   "doc [interface]",
	Short: "Print the attribute table of a relation interface",
	Long: `Print every (role, scope) slot of a registered relation interface with
its attributes, codecs, defaults and checkers.

With no argument relation-copy-data is described. --all describes every
registered interface.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDoc,
}

func init() {
	rootCmd.AddCommand(docCmd)

	docCmd.Flags().BoolVar(&docAll, "all", false, "describe every registered interface")
}

func runDoc(cmd *cobra.Command, args []string) error {
	names := []string{copydata.Name}
	switch {
	case docAll:
		names = registry.Names()
	case len(args) == 1:
		names = args
	}

	out := cmd.OutOrStdout()
	for i, name := range names {
		s, ok := registry.Default.Get(name)
		if !ok {
			return &registry.NotRegisteredError{Name: name}
		}
		if i > 0 {
			fmt.Fprintln(out)
		}
		if err := s.Describe(out); err != nil {
			return err
		}
	}
	return nil
}
