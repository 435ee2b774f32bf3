package relation

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Describe writes a table per slot listing each attribute with its codec,
// default and checkers.
func (s *Schema) Describe(w io.Writer) error {
	fmt.Fprintf(w, "interface %s\n", s.name)
	for _, k := range Keys {
		iface := s.table[k]
		fmt.Fprintf(w, "\n[%s] %s\n", k, iface.Name())

		attrs := iface.Attributes()
		if len(attrs) == 0 {
			fmt.Fprintln(w, "  (no attributes)")
			continue
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  NAME\tCODEC\tDEFAULT\tCHECKERS\tDOC")
		for _, d := range attrs {
			checks := strings.Join(d.Checkers(), ", ")
			if checks == "" {
				checks = "-"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%q\t%s\t%s\n", d.Name(), d.Tag(), d.DefaultText(), checks, d.Doc())
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// Describe documents the bound schema, headed by the relation it is bound
// to when the context knows it.
func (si *SuperInterface) Describe(w io.Writer) error {
	if rel, ok := si.Relation(); ok {
		fmt.Fprintf(w, "relation %s (id %s): %s provides, %s requires\n", si.label, rel.ID, rel.Provider, rel.Requirer)
	} else {
		fmt.Fprintf(w, "relation %s: not established\n", si.label)
	}
	return si.schema.Describe(w)
}
