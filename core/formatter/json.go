package formatter

import (
	"encoding/json"
	"io"
)

// JSONFormatter formats output as JSON.
type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

func (f *JSONFormatter) Name() string {
	return "json"
}

func (f *JSONFormatter) Description() string {
	return "JSON output format"
}

// FormatList formats a list of records as JSON.
func (f *JSONFormatter) FormatList(w io.Writer, ds Dataset, records []map[string]any, opts FormatOptions) error {
	filtered := projectAll(records, opts.Columns)
	return f.encode(w, map[string]any{
		"name":  ds.Name,
		"count": len(filtered),
		"data":  filtered,
	}, opts.Compact)
}

// FormatRecord formats a single record as JSON.
func (f *JSONFormatter) FormatRecord(w io.Writer, ds Dataset, record map[string]any, opts FormatOptions) error {
	return f.encode(w, map[string]any{
		"name": ds.Name,
		"data": project(record, opts.Columns),
	}, opts.Compact)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	return f.encode(w, map[string]any{"error": err.Error()}, false)
}

func (f *JSONFormatter) encode(w io.Writer, data any, compact bool) error {
	encoder := json.NewEncoder(w)
	if !compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

func init() {
	Register(NewJSONFormatter())
}
