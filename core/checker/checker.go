// Package checker provides validation predicates applied to typed values
// before they are written to a bucket.
//
// Checkers are pure: they accept or reject a value and never modify it.
// A descriptor may carry several checkers; all of them must pass, and they
// run in declaration order so the first failure is the one reported.
package checker

import (
	"cmp"
	"fmt"
	"net/netip"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Checker validates values of type T.
type Checker[T any] interface {
	// Name identifies the checker in errors and documentation.
	Name() string

	// Check returns nil when v is acceptable and a *CheckError otherwise.
	Check(v T) error
}

// CheckError reports a value rejected by a checker.
type CheckError struct {
	// Attribute is the attribute being written. Set by the value layer;
	// empty when a checker is invoked directly.
	Attribute string

	// Checker is the name of the rejecting checker.
	Checker string

	// Value is the rejected value.
	Value any

	// Reason explains the rejection.
	Reason string
}

func (e *CheckError) Error() string {
	if e.Attribute != "" {
		return fmt.Sprintf("checker: %s rejected %s=%v: %s", e.Checker, e.Attribute, e.Value, e.Reason)
	}
	return fmt.Sprintf("checker: %s rejected %v: %s", e.Checker, e.Value, e.Reason)
}

type funcChecker[T any] struct {
	name string
	fn   func(T) string
}

func (c funcChecker[T]) Name() string { return c.name }

func (c funcChecker[T]) Check(v T) error {
	if reason := c.fn(v); reason != "" {
		return &CheckError{Checker: c.name, Value: v, Reason: reason}
	}
	return nil
}

// Func builds a checker from a predicate that returns an empty string to
// accept v, or the rejection reason.
func Func[T any](name string, fn func(v T) string) Checker[T] {
	return funcChecker[T]{name: name, fn: fn}
}

// Range accepts lo <= v <= hi.
func Range[T cmp.Ordered](lo, hi T) Checker[T] {
	return Func(fmt.Sprintf("Range(%v, %v)", lo, hi), func(v T) string {
		if v < lo || v > hi {
			return fmt.Sprintf("must be between %v and %v", lo, hi)
		}
		return ""
	})
}

// Min accepts v >= lo.
func Min[T cmp.Ordered](lo T) Checker[T] {
	return Func(fmt.Sprintf("Min(%v)", lo), func(v T) string {
		if v < lo {
			return fmt.Sprintf("must be at least %v", lo)
		}
		return ""
	})
}

// Max accepts v <= hi.
func Max[T cmp.Ordered](hi T) Checker[T] {
	return Func(fmt.Sprintf("Max(%v)", hi), func(v T) string {
		if v > hi {
			return fmt.Sprintf("must be at most %v", hi)
		}
		return ""
	})
}

type named[T any] struct {
	name  string
	inner Checker[T]
}

func (c named[T]) Name() string { return c.name }

func (c named[T]) Check(v T) error {
	if err := c.inner.Check(v); err != nil {
		if ce, ok := err.(*CheckError); ok {
			out := *ce
			out.Checker = c.name
			return &out
		}
		return err
	}
	return nil
}

// Named gives c a different name.
func Named[T any](name string, c Checker[T]) Checker[T] {
	return named[T]{name: name, inner: c}
}

// PrivilegedPort accepts ports 1 through 1023.
func PrivilegedPort() Checker[int] {
	return Named("PrivilegedPort", Range(1, 1023))
}

// UnprivilegedPort accepts ports 1024 through 65535.
func UnprivilegedPort() Checker[int] {
	return Named("UnprivilegedPort", Range(1024, 65535))
}

// Port accepts any TCP/UDP port number, 1 through 65535.
func Port() Checker[int] {
	return Named("Port", Range(1, 65535))
}

type zeroOr[T comparable] struct {
	inner Checker[T]
}

func (c zeroOr[T]) Name() string { return "ZeroOr(" + c.inner.Name() + ")" }

func (c zeroOr[T]) Check(v T) error {
	var zero T
	if v == zero {
		return nil
	}
	return c.inner.Check(v)
}

// ZeroOr accepts the zero value of T, which schemas use to mean "unset",
// and defers every other value to c.
func ZeroOr[T comparable](c Checker[T]) Checker[T] {
	return zeroOr[T]{inner: c}
}

// NotEmpty rejects strings that are empty or only whitespace.
func NotEmpty() Checker[string] {
	return Func("NotEmpty", func(v string) string {
		if strings.TrimSpace(v) == "" {
			return "must not be empty"
		}
		return ""
	})
}

// MinLength accepts strings with at least n characters.
func MinLength(n int) Checker[string] {
	return Func(fmt.Sprintf("MinLength(%d)", n), func(v string) string {
		if utf8.RuneCountInString(v) < n {
			return fmt.Sprintf("must be at least %d characters", n)
		}
		return ""
	})
}

// MaxLength accepts strings with at most n characters.
func MaxLength(n int) Checker[string] {
	return Func(fmt.Sprintf("MaxLength(%d)", n), func(v string) string {
		if utf8.RuneCountInString(v) > n {
			return fmt.Sprintf("must be at most %d characters", n)
		}
		return ""
	})
}

// Pattern accepts strings matching re.
func Pattern(re *regexp.Regexp) Checker[string] {
	return Func(fmt.Sprintf("Pattern(%s)", re), func(v string) string {
		if !re.MatchString(v) {
			return fmt.Sprintf("must match %s", re)
		}
		return ""
	})
}

// OneOf accepts only the listed values.
func OneOf[T comparable](values ...T) Checker[T] {
	return Func(fmt.Sprintf("OneOf%v", values), func(v T) string {
		for _, allowed := range values {
			if v == allowed {
				return ""
			}
		}
		return fmt.Sprintf("must be one of %v", values)
	})
}

// IPv4 accepts IPv4 addresses, including IPv4-mapped IPv6 forms.
func IPv4() Checker[netip.Addr] {
	return Func("IPv4", func(v netip.Addr) string {
		if !v.Unmap().Is4() {
			return "must be an IPv4 address"
		}
		return ""
	})
}

// IPv6 accepts IPv6 addresses that are not IPv4-mapped.
func IPv6() Checker[netip.Addr] {
	return Func("IPv6", func(v netip.Addr) string {
		if !v.Is6() || v.Is4In6() {
			return "must be an IPv6 address"
		}
		return ""
	})
}

// All runs checkers in order and returns the first failure.
func All[T any](v T, checkers ...Checker[T]) error {
	for _, c := range checkers {
		if err := c.Check(v); err != nil {
			return err
		}
	}
	return nil
}
