package main

import (
	"fmt"
	"strings"

	"github.com/artpar/copydata/core/formatter"
	"github.com/spf13/cobra"
)

var statusOutput string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the unit status and the local bucket contents",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table",
		"output format: "+strings.Join(formatter.List(), ", "))
}

func runStatus(cmd *cobra.Command, args []string) error {
	f, ok := formatter.Get(statusOutput)
	if !ok {
		return fmt.Errorf("unknown output format %q (available: %s)", statusOutput, strings.Join(formatter.List(), ", "))
	}

	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	st, err := a.Charm.UpdateStatus(ctx)
	if err != nil {
		return err
	}
	local := a.Model.Local()
	err = f.FormatRecord(out, formatter.Dataset{
		Name:    "status",
		Columns: []string{"unit", "leader", "state", "message"},
	}, map[string]any{
		"unit":    local.Unit,
		"leader":  local.Leader,
		"state":   string(st.State),
		"message": st.Message,
	}, formatter.FormatOptions{})
	if err != nil {
		return err
	}

	if _, ok := a.Model.Relation(a.Charm.RelationLabel()); !ok {
		return nil
	}
	views, err := a.Charm.Views(ctx)
	if err != nil {
		return err
	}
	for _, v := range views {
		records := make([]map[string]any, 0, len(v.Fields))
		for _, field := range v.Fields {
			records = append(records, map[string]any{"name": field.Name, "codec": field.Tag, "value": field.Value})
		}
		fmt.Fprintln(out)
		if statusOutput == "table" {
			fmt.Fprintf(out, "%s %s\n", v.Title, v.Entity.Name)
		}
		ds := formatter.Dataset{Name: v.Title + " " + v.Entity.Name, Columns: []string{"name", "codec", "value"}}
		if err := f.FormatList(out, ds, records, formatter.FormatOptions{MaxWidth: 60}); err != nil {
			return err
		}
	}
	return nil
}
