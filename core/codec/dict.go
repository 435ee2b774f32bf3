package codec

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dict encodes a string-keyed map as a YAML flow mapping.
//
// The domain is map[string]any whose members are nil, bool, int, float64,
// string, []any or a nested map[string]any. Strings are always quoted and
// whole floats keep a fractional part, so every member decodes back to its
// original Go type. Nil maps and slices encode as empty collections.
// Keys and strings must be valid UTF-8; other text is refused with an
// *EncodeError.
type Dict struct{}

func (Dict) Tag() Tag { return TagDict }

func (Dict) Encode(v map[string]any) (string, error) {
	node, err := dictNode(v)
	if err != nil {
		return "", err
	}
	out, err := yaml.Marshal(node)
	if err != nil {
		return "", &EncodeError{Tag: TagDict, Value: v, Reason: err.Error()}
	}
	return strings.TrimRight(string(out), "\n"), nil
}

func (Dict) Decode(s string) (map[string]any, error) {
	var v map[string]any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return nil, &DecodeError{Tag: TagDict, Data: s, Err: err}
	}
	if v == nil {
		v = map[string]any{}
	}
	return v, nil
}

func dictNode(m map[string]any) (*yaml.Node, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Style: yaml.FlowStyle}
	for _, k := range keys {
		val, err := memberNode(m[k])
		if err != nil {
			return nil, err
		}
		node.Content = append(node.Content, stringNode(k), val)
	}
	return node, nil
}

func memberNode(v any) (*yaml.Node, error) {
	switch x := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(x)}, nil
	case int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(x)}, nil
	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: floatText(x)}, nil
	case string:
		return stringNode(x), nil
	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
		for _, item := range x {
			child, err := memberNode(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	case map[string]any:
		return dictNode(x)
	default:
		return nil, &EncodeError{Tag: TagDict, Value: v, Reason: fmt.Sprintf("unsupported member type %T", v)}
	}
}

func stringNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s, Style: yaml.DoubleQuotedStyle}
}

// floatText renders f so that YAML resolves it as a float again.
func floatText(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
