// Package codec converts typed values to and from the string form stored in
// relation buckets.
//
// Every codec owns exactly one Go value type and satisfies the round-trip
// law: for every v in the codec's domain, Decode(Encode(v)) == v. Absent
// bucket entries never reach a codec; callers substitute their own default.
//
// Supported codecs:
//
//   - Boolean:   bool, "true" / "false"
//   - Integer:   int, base-10
//   - Float:     float64, shortest text that parses back to the same value
//   - String:    string, verbatim
//   - Noop:      string, verbatim, for opaque pass-through attributes
//   - Blob:      []byte, standard base64
//   - IPAddress: netip.Addr
//   - IPNetwork: netip.Prefix, canonical (masked) form only
//   - Dict:      map[string]any, YAML flow mapping
//   - Ready:     bool, "ready" / ""
package codec

import (
	"fmt"
)

// Tag identifies a codec.
type Tag string

const (
	TagBoolean   Tag = "boolean"
	TagInteger   Tag = "integer"
	TagFloat     Tag = "float"
	TagString    Tag = "string"
	TagNoop      Tag = "noop"
	TagBlob      Tag = "blob"
	TagIPAddress Tag = "ipaddress"
	TagIPNetwork Tag = "ipnetwork"
	TagDict      Tag = "dict"
	TagReady     Tag = "ready"
)

// Codec converts values of type T to bucket strings and back.
// Implementations are stateless and safe for concurrent use.
type Codec[T any] interface {
	// Tag returns the codec identifier.
	Tag() Tag

	// Encode returns the bucket representation of v.
	// It fails with *EncodeError when v is outside the codec's domain.
	Encode(v T) (string, error)

	// Decode parses a bucket representation.
	// It fails with *DecodeError when s violates the codec's grammar.
	Decode(s string) (T, error)
}

// DecodeError is returned when stored text cannot be decoded. Stored data is
// expected to come from a compatible writer, so a DecodeError indicates a
// protocol violation rather than a missing value.
type DecodeError struct {
	// Tag is the codec that rejected the input.
	Tag Tag

	// Data is the stored text.
	Data string

	// Err is the underlying parse failure, if any.
	Err error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("codec: cannot decode %s from %q: %v", e.Tag, e.Data, e.Err)
	}
	return fmt.Sprintf("codec: cannot decode %s from %q", e.Tag, e.Data)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError is returned when a value lies outside a codec's domain.
type EncodeError struct {
	Tag    Tag
	Value  any
	Reason string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("codec: cannot encode %v as %s: %s", e.Value, e.Tag, e.Reason)
}
