// Package value binds an attribute name to a codec, a default and a list of
// checkers.
//
// A Value reads and writes one key of a bucket. Absent keys read as the
// default without touching the bucket; writes are validated before they are
// encoded, and a rejected write leaves the stored text as it was.
package value

import (
	"context"
	"errors"
	"fmt"

	"github.com/artpar/copydata/core/checker"
	"github.com/artpar/copydata/core/codec"
)

// Bucket is the string key-value store a Value reads and writes.
type Bucket interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Value is a typed attribute descriptor.
type Value[T any] struct {
	name     string
	codec    codec.Codec[T]
	def      T
	defText  string
	checkers []checker.Checker[T]
	doc      string
}

// New creates a descriptor. The default must pass every checker and must be
// encodable by c.
func New[T any](name string, c codec.Codec[T], def T, checks ...checker.Checker[T]) (*Value[T], error) {
	if name == "" {
		return nil, errors.New("value: attribute name is required")
	}
	if c == nil {
		return nil, fmt.Errorf("value: %s: codec is required", name)
	}

	v := &Value[T]{name: name, codec: c, def: def, checkers: checks}
	if err := v.Check(def); err != nil {
		return nil, fmt.Errorf("value: invalid default: %w", err)
	}
	text, err := c.Encode(def)
	if err != nil {
		return nil, fmt.Errorf("value: %s: invalid default: %w", name, err)
	}
	v.defText = text
	return v, nil
}

// Must panics if err is non-nil. It is intended for package-level
// attribute declarations.
func Must[T any](v *Value[T], err error) *Value[T] {
	if err != nil {
		panic(err)
	}
	return v
}

// WithDoc sets the documentation line and returns v.
func (v *Value[T]) WithDoc(doc string) *Value[T] {
	v.doc = doc
	return v
}

func (v *Value[T]) Name() string { return v.name }

func (v *Value[T]) Tag() codec.Tag { return v.codec.Tag() }

func (v *Value[T]) Doc() string { return v.doc }

// Default returns a fresh copy of the default value.
func (v *Value[T]) Default() T {
	out, err := v.codec.Decode(v.defText)
	if err != nil {
		// defText came from the same codec at construction.
		return v.def
	}
	return out
}

// DefaultText returns the encoded default.
func (v *Value[T]) DefaultText() string { return v.defText }

// Checkers returns the checker names in evaluation order.
func (v *Value[T]) Checkers() []string {
	names := make([]string, len(v.checkers))
	for i, c := range v.checkers {
		names[i] = c.Name()
	}
	return names
}

// Check runs the checkers against x. The first failure is returned with
// Attribute set to the descriptor name.
func (v *Value[T]) Check(x T) error {
	err := checker.All(x, v.checkers...)
	if err == nil {
		return nil
	}
	var ce *checker.CheckError
	if errors.As(err, &ce) && ce.Attribute == "" {
		named := *ce
		named.Attribute = v.name
		return &named
	}
	return err
}

// Read returns the stored value, or the default if the key is absent.
func (v *Value[T]) Read(ctx context.Context, b Bucket) (T, error) {
	var zero T
	s, ok, err := b.Get(ctx, v.name)
	if err != nil {
		return zero, fmt.Errorf("value: read %s: %w", v.name, err)
	}
	if !ok {
		return v.Default(), nil
	}
	out, err := v.codec.Decode(s)
	if err != nil {
		return zero, fmt.Errorf("value: read %s: %w", v.name, err)
	}
	return out, nil
}

// Write validates, encodes and stores x.
func (v *Value[T]) Write(ctx context.Context, b Bucket, x T) error {
	if err := v.Check(x); err != nil {
		return err
	}
	s, err := v.codec.Encode(x)
	if err != nil {
		return fmt.Errorf("value: write %s: %w", v.name, err)
	}
	if err := b.Set(ctx, v.name, s); err != nil {
		return fmt.Errorf("value: write %s: %w", v.name, err)
	}
	return nil
}

// DefaultValue implements Descriptor.
func (v *Value[T]) DefaultValue() any { return v.Default() }

// Get implements Descriptor.
func (v *Value[T]) Get(ctx context.Context, b Bucket) (any, error) {
	out, err := v.Read(ctx, b)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Set implements Descriptor. x must hold a T.
func (v *Value[T]) Set(ctx context.Context, b Bucket, x any) error {
	typed, ok := x.(T)
	if !ok {
		return &TypeError{Attribute: v.name, Want: fmt.Sprintf("%T", v.def), Got: fmt.Sprintf("%T", x)}
	}
	return v.Write(ctx, b, typed)
}

// Parse implements Descriptor.
func (v *Value[T]) Parse(s string) (any, error) {
	out, err := v.codec.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("value: parse %s: %w", v.name, err)
	}
	return out, nil
}

// Format implements Descriptor.
func (v *Value[T]) Format(x any) (string, error) {
	typed, ok := x.(T)
	if !ok {
		return "", &TypeError{Attribute: v.name, Want: fmt.Sprintf("%T", v.def), Got: fmt.Sprintf("%T", x)}
	}
	return v.codec.Encode(typed)
}

// Descriptor is the type-erased view of a Value used by bucket tables.
type Descriptor interface {
	Name() string
	Tag() codec.Tag
	Doc() string
	DefaultValue() any
	DefaultText() string
	Checkers() []string

	// Get reads the attribute from b.
	Get(ctx context.Context, b Bucket) (any, error)

	// Set validates and writes x, which must have the descriptor's Go type.
	Set(ctx context.Context, b Bucket, x any) error

	// Parse decodes textual input with the descriptor's codec. It does not
	// run checkers; Set does.
	Parse(s string) (any, error)

	// Format encodes x with the descriptor's codec.
	Format(x any) (string, error)
}

// TypeError is returned by the dynamic accessors when a value has the wrong
// Go type for the attribute.
type TypeError struct {
	Attribute string
	Want      string
	Got       string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("value: %s expects %s, got %s", e.Attribute, e.Want, e.Got)
}
