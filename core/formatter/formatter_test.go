package formatter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/netip"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

var testDataset = Dataset{Name: "UNIT b-sink/0", Columns: []string{"name", "codec", "value"}}

func testRecords() []map[string]any {
	return []map[string]any{
		{"name": "int", "codec": "integer", "value": 5},
		{"name": "ipaddr", "codec": "ipaddress", "value": netip.MustParseAddr("10.0.0.1")},
	}
}

func TestDefaultRegistry(t *testing.T) {
	if got := List(); strings.Join(got, ",") != "json,table,yaml" {
		t.Errorf("List() = %v", got)
	}
	if f := DefaultRegistry.Default(); f == nil || f.Name() != "table" {
		t.Errorf("Default() = %v", f)
	}
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(NewJSONFormatter()); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(NewJSONFormatter()); err == nil {
		t.Error("duplicate Register() should fail")
	}
	if r.Default() != nil {
		t.Error("Default() without a table formatter should be nil")
	}
}

func TestTableFormatter_FormatList(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTableFormatter().FormatList(&buf, testDataset, testRecords(), FormatOptions{}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %q", lines)
	}
	if !strings.HasPrefix(lines[0], "NAME") || !strings.Contains(lines[0], "CODEC") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[2], "10.0.0.1") {
		t.Errorf("row = %q", lines[2])
	}
}

func TestTableFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewTableFormatter().FormatList(&buf, testDataset, nil, FormatOptions{})
	if buf.String() != "No records found.\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestTableFormatter_FormatRecord(t *testing.T) {
	var buf bytes.Buffer
	rec := map[string]any{"state": "active", "leader": true, "last_event": nil}
	err := NewTableFormatter().FormatRecord(&buf, Dataset{Columns: []string{"state", "leader", "last_event"}}, rec, FormatOptions{})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"State:", "active", "yes", "Last Event:", "-"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTableFormatter_MaxWidth(t *testing.T) {
	f := NewTableFormatter()
	if got := f.formatValue("abcdefghij", 6); got != "abc..." {
		t.Errorf("formatValue() = %q", got)
	}
	if got := f.formatValue(2.5, 0); got != "2.50" {
		t.Errorf("formatValue(2.5) = %q", got)
	}
}

func TestJSONFormatter_Columns(t *testing.T) {
	var buf bytes.Buffer
	err := NewJSONFormatter().FormatList(&buf, testDataset, testRecords(), FormatOptions{Columns: []string{"name"}, Compact: true})
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		Name  string           `json:"name"`
		Count int              `json:"count"`
		Data  []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 2 || len(out.Data[0]) != 1 || out.Data[1]["name"] != "ipaddr" {
		t.Errorf("out = %+v", out)
	}
}

func TestYAMLFormatter_FormatRecord(t *testing.T) {
	var buf bytes.Buffer
	rec := map[string]any{"value": netip.MustParsePrefix("10.0.0.0/8")}
	if err := NewYAMLFormatter().FormatRecord(&buf, testDataset, rec, FormatOptions{}); err != nil {
		t.Fatal(err)
	}
	var out map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	data := out["data"].(map[string]any)
	if data["value"] != "10.0.0.0/8" {
		t.Errorf("data = %v", data)
	}
}

func TestFormatError(t *testing.T) {
	err := errors.New("boom")
	for _, name := range List() {
		f, _ := Get(name)
		var buf bytes.Buffer
		if e := f.FormatError(&buf, err); e != nil {
			t.Errorf("%s: %v", name, e)
		}
		if !strings.Contains(buf.String(), "boom") {
			t.Errorf("%s: output %q", name, buf.String())
		}
	}
}
