package formatter

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter formats output as YAML.
type YAMLFormatter struct{}

func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

func (f *YAMLFormatter) Name() string {
	return "yaml"
}

func (f *YAMLFormatter) Description() string {
	return "YAML output format"
}

// FormatList formats a list of records as YAML.
func (f *YAMLFormatter) FormatList(w io.Writer, ds Dataset, records []map[string]any, opts FormatOptions) error {
	filtered := projectAll(records, opts.Columns)
	return f.encode(w, map[string]any{
		"name":  ds.Name,
		"count": len(filtered),
		"data":  filtered,
	})
}

// FormatRecord formats a single record as YAML.
func (f *YAMLFormatter) FormatRecord(w io.Writer, ds Dataset, record map[string]any, opts FormatOptions) error {
	return f.encode(w, map[string]any{
		"name": ds.Name,
		"data": project(record, opts.Columns),
	})
}

// FormatError formats an error as YAML.
func (f *YAMLFormatter) FormatError(w io.Writer, err error) error {
	return f.encode(w, map[string]any{"error": err.Error()})
}

func (f *YAMLFormatter) encode(w io.Writer, data any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return encoder.Close()
}

func init() {
	Register(NewYAMLFormatter())
}
