package codec

import (
	"encoding/base64"
	"strconv"
)

// Boolean encodes bool as "true" or "false".
type Boolean struct{}

func (Boolean) Tag() Tag { return TagBoolean }

func (Boolean) Encode(v bool) (string, error) {
	return strconv.FormatBool(v), nil
}

func (Boolean) Decode(s string) (bool, error) {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, &DecodeError{Tag: TagBoolean, Data: s, Err: err}
	}
	return v, nil
}

// Integer encodes int in base 10.
type Integer struct{}

func (Integer) Tag() Tag { return TagInteger }

func (Integer) Encode(v int) (string, error) {
	return strconv.Itoa(v), nil
}

func (Integer) Decode(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, &DecodeError{Tag: TagInteger, Data: s, Err: err}
	}
	return v, nil
}

// Float encodes float64 using the shortest representation that parses back
// to the identical value.
type Float struct{}

func (Float) Tag() Tag { return TagFloat }

func (Float) Encode(v float64) (string, error) {
	return strconv.FormatFloat(v, 'g', -1, 64), nil
}

func (Float) Decode(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &DecodeError{Tag: TagFloat, Data: s, Err: err}
	}
	return v, nil
}

// String stores text verbatim.
type String struct{}

func (String) Tag() Tag { return TagString }

func (String) Encode(v string) (string, error) { return v, nil }

func (String) Decode(s string) (string, error) { return s, nil }

// Noop stores text verbatim. It marks attributes whose content the schema
// does not interpret.
type Noop struct{}

func (Noop) Tag() Tag { return TagNoop }

func (Noop) Encode(v string) (string, error) { return v, nil }

func (Noop) Decode(s string) (string, error) { return s, nil }

// Blob encodes binary data with standard padded base64.
type Blob struct{}

func (Blob) Tag() Tag { return TagBlob }

func (Blob) Encode(v []byte) (string, error) {
	return base64.StdEncoding.EncodeToString(v), nil
}

func (Blob) Decode(s string) ([]byte, error) {
	v, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, &DecodeError{Tag: TagBlob, Data: s, Err: err}
	}
	return v, nil
}

// readyText is the stored form of a true Ready value.
const readyText = "ready"

// Ready is a readiness flag: "ready" when set, empty otherwise.
type Ready struct{}

func (Ready) Tag() Tag { return TagReady }

func (Ready) Encode(v bool) (string, error) {
	if v {
		return readyText, nil
	}
	return "", nil
}

func (Ready) Decode(s string) (bool, error) {
	switch s {
	case readyText:
		return true, nil
	case "":
		return false, nil
	default:
		return false, &DecodeError{Tag: TagReady, Data: s}
	}
}
