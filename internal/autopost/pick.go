package autopost

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Record is the loosely-typed JSON object shape all metadata arrives in.
type Record = map[string]any

// AsRecord returns v as a Record when it is a JSON object, nil otherwise.
// Arrays and scalars are not records.
func AsRecord(v any) Record {
	if r, ok := v.(Record); ok {
		return r
	}
	return nil
}

// PickValue returns the first value present under any of the given keys.
// Presence means the key exists, even when the value is null; this mirrors
// how the upstream producers distinguish "unset" from "set to nothing".
func PickValue(src Record, keys ...string) (any, bool) {
	if src == nil {
		return nil, false
	}
	for _, key := range keys {
		if v, ok := src[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// PickRecord returns the first nested object found under any of the given
// keys, trying them in order.
func PickRecord(src Record, keys ...string) Record {
	if src == nil {
		return nil
	}
	for _, key := range keys {
		if r := AsRecord(src[key]); r != nil {
			return r
		}
	}
	return nil
}

// PickString returns the first non-empty trimmed string found under any of
// the given keys. Numbers and booleans are stringified, matching the
// tolerant upstream readers. Empty-after-trim counts as absent, so later
// keys are still consulted.
func PickString(src Record, keys ...string) string {
	if src == nil {
		return ""
	}
	for _, key := range keys {
		if s := coerceString(src[key]); s != "" {
			return s
		}
	}
	return ""
}

// PickNumber returns the first finite number found under any of the given
// keys. Numeric strings are parsed.
func PickNumber(src Record, keys ...string) (float64, bool) {
	if src == nil {
		return 0, false
	}
	for _, key := range keys {
		if n, ok := coerceNumber(src[key]); ok {
			return n, true
		}
	}
	return 0, false
}

// PickBool returns the first boolean found under any of the given keys.
// The strings "true"/"false" are accepted as well.
func PickBool(src Record, keys ...string) (bool, bool) {
	if src == nil {
		return false, false
	}
	for _, key := range keys {
		switch v := src[key].(type) {
		case bool:
			return v, true
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				return b, true
			}
		}
	}
	return false, false
}

// PickStringList returns the first non-empty string list found under any of
// the given keys, accepting either a native list or a single delimited
// string split on sep.
func PickStringList(src Record, sep *regexp.Regexp, keys ...string) []string {
	if src == nil {
		return nil
	}
	for _, key := range keys {
		if _, ok := src[key]; !ok {
			continue
		}
		if values := toStringList(src[key], sep); len(values) > 0 {
			return values
		}
	}
	return nil
}

func coerceString(v any) string {
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(value)
	case float64:
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return ""
		}
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	}
	return ""
}

func coerceNumber(v any) (float64, bool) {
	switch value := v.(type) {
	case float64:
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return 0, false
		}
		return value, true
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

// toStringList normalizes a string-or-list field into a deduplicated list.
// Duplicates are detected case-insensitively, keeping the first-seen casing.
func toStringList(v any, sep *regexp.Regexp) []string {
	var raw []string
	switch value := v.(type) {
	case []any:
		for _, item := range value {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	case []string:
		raw = value
	case string:
		raw = sep.Split(value, -1)
	default:
		return nil
	}
	return Dedupe(raw)
}

// Dedupe trims entries, drops empties, and removes case-insensitive
// duplicates while preserving the first-seen original casing.
func Dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}
