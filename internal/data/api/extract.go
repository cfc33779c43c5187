package api

import (
	"sort"
	"strconv"
	"strings"
)

// maxKeyDepth bounds how deep nested objects are walked when discovering
// field keys.
const maxKeyDepth = 3

// FieldKind tags what a dotted field path resolved to.
type FieldKind int

const (
	FieldMissing FieldKind = iota
	FieldNumber
	FieldString
)

// FieldValue is the resolved value of one dotted field path.
type FieldValue struct {
	Kind   FieldKind
	Number float64
	String string
}

// ExtractFieldKeys walks a decoded JSON object and returns every reachable
// dotted path, sorted. Arrays are treated as leaves, and nesting stops a few
// levels down so huge responses stay manageable.
func ExtractFieldKeys(data map[string]interface{}) []string {
	keys := make(map[string]struct{})
	collectKeys(data, "", keys)

	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func collectKeys(data map[string]interface{}, prefix string, keys map[string]struct{}) {
	for key, value := range data {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		keys[fullKey] = struct{}{}

		if nested, ok := value.(map[string]interface{}); ok && pathDepth(prefix) < maxKeyDepth {
			collectKeys(nested, fullKey, keys)
		}
	}
}

func pathDepth(prefix string) int {
	return len(strings.Split(prefix, "."))
}

// ResolveField follows a dotted path through a decoded JSON object. Numeric
// strings resolve as numbers; traversal stops at the first missing segment.
func ResolveField(data map[string]interface{}, fieldPath string) FieldValue {
	if fieldPath == "" || data == nil {
		return FieldValue{Kind: FieldMissing}
	}

	var value interface{} = data
	for _, key := range strings.Split(fieldPath, ".") {
		obj, ok := value.(map[string]interface{})
		if !ok {
			return FieldValue{Kind: FieldMissing}
		}
		value, ok = obj[key]
		if !ok {
			return FieldValue{Kind: FieldMissing}
		}
	}

	switch v := value.(type) {
	case float64:
		return FieldValue{Kind: FieldNumber, Number: v}
	case int64:
		return FieldValue{Kind: FieldNumber, Number: float64(v)}
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return FieldValue{Kind: FieldNumber, Number: n}
		}
		return FieldValue{Kind: FieldString, String: v}
	default:
		return FieldValue{Kind: FieldMissing}
	}
}

// NumericField resolves a path to a number, treating anything non-numeric as
// zero. This is the coercion the dashboard metrics use.
func NumericField(data map[string]interface{}, fieldPath string) float64 {
	v := ResolveField(data, fieldPath)
	if v.Kind == FieldNumber {
		return v.Number
	}
	return 0
}
