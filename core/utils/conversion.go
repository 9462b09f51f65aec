package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ToString converts various types to string.
// Whole floats are printed without a fraction so that a JSON-decoded 1 and an int 1
// produce the same key.
func ToString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToBool converts various types to bool.
// It handles bool, numeric types (1=true), and strings ("1", "true").
func ToBool(val any) bool {
	switch v := val.(type) {
	case bool:
		return v
	case int:
		return v == 1
	case int64:
		return v == 1
	case float64:
		return v == 1
	case string:
		return v == "1" || strings.ToLower(v) == "true"
	case []byte:
		s := string(v)
		return s == "1" || strings.ToLower(s) == "true"
	default:
		return false
	}
}

// KeyOf returns the join/identity key of field in row: the value's string form,
// compared verbatim. ok is false when the field is absent, nil, or only whitespace.
func KeyOf(row map[string]any, field string) (key string, ok bool) {
	v, present := row[field]
	if !present || v == nil {
		return "", false
	}
	key = ToString(v)
	if strings.TrimSpace(key) == "" {
		return "", false
	}
	return key, true
}

// NormalizeName folds a display name for comparison: trimmed, lower-cased, inner
// whitespace collapsed.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// SplitList splits a comma-separated list, trimming entries and dropping empty ones.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
