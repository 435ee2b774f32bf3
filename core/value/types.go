package value

import (
	"net/netip"

	"github.com/artpar/copydata/core/checker"
	"github.com/artpar/copydata/core/codec"
)

// The constructors below pick the codec from the Go type and panic when the
// default is invalid.

func Boolean(name string, def bool, checks ...checker.Checker[bool]) *Value[bool] {
	return Must(New[bool](name, codec.Boolean{}, def, checks...))
}

func Integer(name string, def int, checks ...checker.Checker[int]) *Value[int] {
	return Must(New[int](name, codec.Integer{}, def, checks...))
}

func Float(name string, def float64, checks ...checker.Checker[float64]) *Value[float64] {
	return Must(New[float64](name, codec.Float{}, def, checks...))
}

func String(name string, def string, checks ...checker.Checker[string]) *Value[string] {
	return Must(New[string](name, codec.String{}, def, checks...))
}

// Noop declares an opaque text attribute.
func Noop(name string, def string) *Value[string] {
	return Must(New[string](name, codec.Noop{}, def))
}

func Blob(name string, def []byte, checks ...checker.Checker[[]byte]) *Value[[]byte] {
	return Must(New[[]byte](name, codec.Blob{}, def, checks...))
}

func IPAddress(name string, def netip.Addr, checks ...checker.Checker[netip.Addr]) *Value[netip.Addr] {
	return Must(New[netip.Addr](name, codec.IPAddress{}, def, checks...))
}

func IPNetwork(name string, def netip.Prefix, checks ...checker.Checker[netip.Prefix]) *Value[netip.Prefix] {
	return Must(New[netip.Prefix](name, codec.IPNetwork{}, def, checks...))
}

func Dict(name string, def map[string]any, checks ...checker.Checker[map[string]any]) *Value[map[string]any] {
	return Must(New[map[string]any](name, codec.Dict{}, def, checks...))
}

// Ready declares a readiness flag.
func Ready(name string) *Value[bool] {
	return Must(New[bool](name, codec.Ready{}, false))
}

// PrivilegedPort declares an integer port in 1..1023. Zero means unset and
// is therefore always accepted.
func PrivilegedPort(name string, def int) *Value[int] {
	return Must(New[int](name, codec.Integer{}, def, checker.ZeroOr(checker.PrivilegedPort())))
}
