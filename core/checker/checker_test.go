package checker_test

import (
	"errors"
	"net/netip"
	"regexp"
	"strings"
	"testing"

	"github.com/artpar/copydata/core/checker"
)

func TestPrivilegedPort(t *testing.T) {
	c := checker.PrivilegedPort()

	for _, v := range []int{1, 22, 80, 443, 1023} {
		if err := c.Check(v); err != nil {
			t.Errorf("Check(%d) error = %v", v, err)
		}
	}

	for _, v := range []int{-1, 0, 1024, 8080} {
		err := c.Check(v)
		var ce *checker.CheckError
		if !errors.As(err, &ce) {
			t.Fatalf("Check(%d) error = %v, want *checker.CheckError", v, err)
		}
		if ce.Checker != "PrivilegedPort" {
			t.Errorf("Checker = %q, want PrivilegedPort", ce.Checker)
		}
		if ce.Value != v {
			t.Errorf("Value = %v, want %d", ce.Value, v)
		}
	}
}

func TestPorts(t *testing.T) {
	tests := []struct {
		name string
		c    checker.Checker[int]
		ok   []int
		bad  []int
	}{
		{"port", checker.Port(), []int{1, 80, 65535}, []int{0, 65536}},
		{"unprivileged", checker.UnprivilegedPort(), []int{1024, 8080, 65535}, []int{1023, 65536}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, v := range tt.ok {
				if err := tt.c.Check(v); err != nil {
					t.Errorf("Check(%d) error = %v", v, err)
				}
			}
			for _, v := range tt.bad {
				if err := tt.c.Check(v); err == nil {
					t.Errorf("Check(%d) should fail", v)
				}
			}
		})
	}
}

func TestRangeMinMax(t *testing.T) {
	if err := checker.Min(0).Check(0); err != nil {
		t.Errorf("Min(0).Check(0) error = %v", err)
	}
	if err := checker.Min(0).Check(-1); err == nil {
		t.Error("Min(0).Check(-1) should fail")
	}
	if err := checker.Max(1.5).Check(1.6); err == nil {
		t.Error("Max(1.5).Check(1.6) should fail")
	}
	if err := checker.Range("b", "d").Check("c"); err != nil {
		t.Errorf("Range(b, d).Check(c) error = %v", err)
	}
	if got := checker.Range(1, 5).Name(); got != "Range(1, 5)" {
		t.Errorf("Name() = %q", got)
	}
}

func TestZeroOr(t *testing.T) {
	c := checker.ZeroOr(checker.PrivilegedPort())

	if err := c.Check(0); err != nil {
		t.Errorf("Check(0) error = %v", err)
	}
	if err := c.Check(80); err != nil {
		t.Errorf("Check(80) error = %v", err)
	}
	if err := c.Check(8080); err == nil {
		t.Error("Check(8080) should fail")
	}
	if got := c.Name(); got != "ZeroOr(PrivilegedPort)" {
		t.Errorf("Name() = %q", got)
	}
}

func TestStringCheckers(t *testing.T) {
	tests := []struct {
		name string
		c    checker.Checker[string]
		v    string
		ok   bool
	}{
		{"not empty ok", checker.NotEmpty(), "x", true},
		{"not empty blank", checker.NotEmpty(), "  \t", false},
		{"min length", checker.MinLength(3), "abc", true},
		{"min length short", checker.MinLength(3), "ab", false},
		{"max length runes", checker.MaxLength(2), "üü", true},
		{"max length long", checker.MaxLength(2), "abc", false},
		{"pattern", checker.Pattern(regexp.MustCompile(`^[a-z-]+$`)), "copy-data", true},
		{"pattern miss", checker.Pattern(regexp.MustCompile(`^[a-z-]+$`)), "Copy", false},
		{"one of", checker.OneOf("a", "b"), "b", true},
		{"one of miss", checker.OneOf("a", "b"), "c", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Check(tt.v)
			if (err == nil) != tt.ok {
				t.Errorf("Check(%q) error = %v, want ok=%v", tt.v, err, tt.ok)
			}
		})
	}
}

func TestAddressFamily(t *testing.T) {
	v4 := netip.MustParseAddr("10.0.0.1")
	mapped := netip.MustParseAddr("::ffff:10.0.0.1")
	v6 := netip.MustParseAddr("2001:db8::1")

	if err := checker.IPv4().Check(v4); err != nil {
		t.Errorf("IPv4(v4) error = %v", err)
	}
	if err := checker.IPv4().Check(mapped); err != nil {
		t.Errorf("IPv4(mapped) error = %v", err)
	}
	if err := checker.IPv4().Check(v6); err == nil {
		t.Error("IPv4(v6) should fail")
	}
	if err := checker.IPv6().Check(v6); err != nil {
		t.Errorf("IPv6(v6) error = %v", err)
	}
	if err := checker.IPv6().Check(mapped); err == nil {
		t.Error("IPv6(mapped) should fail")
	}
}

func TestAll_FirstFailureWins(t *testing.T) {
	err := checker.All(5000, checker.Min(0), checker.Port(), checker.PrivilegedPort())
	var ce *checker.CheckError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %v, want *checker.CheckError", err)
	}
	if ce.Checker != "PrivilegedPort" {
		t.Errorf("Checker = %q, want PrivilegedPort", ce.Checker)
	}

	if err := checker.All(80, checker.Min(0), checker.Port(), checker.PrivilegedPort()); err != nil {
		t.Errorf("All(80) error = %v", err)
	}
}

func TestFunc(t *testing.T) {
	even := checker.Func("Even", func(v int) string {
		if v%2 != 0 {
			return "must be even"
		}
		return ""
	})

	if err := even.Check(2); err != nil {
		t.Errorf("Check(2) error = %v", err)
	}
	err := even.Check(3)
	if err == nil || !strings.Contains(err.Error(), "must be even") {
		t.Errorf("Check(3) error = %v", err)
	}
}

func TestCheckError_Message(t *testing.T) {
	e := &checker.CheckError{Attribute: "count", Checker: "Min(0)", Value: -1, Reason: "must be at least 0"}
	want := "checker: Min(0) rejected count=-1: must be at least 0"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}
}
