// Package formatter provides a pluggable output formatting system.
// Formatters convert records to an output format (table, json, yaml).
package formatter

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

// Dataset names a group of records and the order of their columns.
type Dataset struct {
	Name    string
	Columns []string
}

// Formatter converts structured data to a specific output format.
type Formatter interface {
	// Name returns the formatter name (e.g., "table", "json", "yaml").
	Name() string

	// Description returns a human-readable description.
	Description() string

	// FormatList formats a list of records.
	FormatList(w io.Writer, ds Dataset, records []map[string]any, opts FormatOptions) error

	// FormatRecord formats a single record.
	FormatRecord(w io.Writer, ds Dataset, record map[string]any, opts FormatOptions) error

	// FormatError formats an error.
	FormatError(w io.Writer, err error) error
}

// FormatOptions configures formatting behavior.
type FormatOptions struct {
	// Columns restricts output to these fields (nil = the dataset columns).
	Columns []string

	// NoHeader disables header row for tabular formats.
	NoHeader bool

	// Compact minimizes whitespace (json only).
	Compact bool

	// MaxWidth truncates long values (0 = no limit).
	MaxWidth int
}

// columns returns the fields to print, in order.
func columns(ds Dataset, opts FormatOptions) []string {
	if len(opts.Columns) > 0 {
		return opts.Columns
	}
	return ds.Columns
}

// project keeps the selected columns of record. With no columns at all the
// record is returned as is.
func project(record map[string]any, cols []string) map[string]any {
	if record == nil || len(cols) == 0 {
		return record
	}
	out := make(map[string]any, len(cols))
	for _, col := range cols {
		if v, ok := record[col]; ok {
			out[col] = v
		}
	}
	return out
}

func projectAll(records []map[string]any, cols []string) []map[string]any {
	out := make([]map[string]any, len(records))
	for i, r := range records {
		out[i] = project(r, cols)
	}
	return out
}

// Registry manages registered formatters.
type Registry struct {
	mu         sync.RWMutex
	formatters map[string]Formatter
	defaultFmt string
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		formatters: make(map[string]Formatter),
		defaultFmt: "table",
	}
}

// Register adds a formatter to the registry.
func (r *Registry) Register(f Formatter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.formatters[f.Name()]; exists {
		return fmt.Errorf("formatter %q already registered", f.Name())
	}

	r.formatters[f.Name()] = f
	return nil
}

// Get returns a formatter by name.
func (r *Registry) Get(name string) (Formatter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.formatters[name]
	return f, ok
}

// Default returns the default formatter, or nil when none is registered.
func (r *Registry) Default() Formatter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.formatters[r.defaultFmt]
}

// List returns all registered formatter names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.formatters))
	for name := range r.formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter to the default registry.
func Register(f Formatter) error {
	return DefaultRegistry.Register(f)
}

// Get returns a formatter from the default registry.
func Get(name string) (Formatter, bool) {
	return DefaultRegistry.Get(name)
}

// List returns all formatter names from the default registry.
func List() []string {
	return DefaultRegistry.List()
}
