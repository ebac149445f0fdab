// Package casing converts object keys between the backend's snake_case wire
// format and the camelCase used by the typed client models.
package casing

import (
	"strings"
	"unicode"
)

// CamelKey converts a snake_case or kebab-case key to camelCase.
// Keys without separators are returned unchanged.
func CamelKey(key string) string {
	if !strings.ContainsAny(key, "_-") {
		return key
	}

	var b strings.Builder
	b.Grow(len(key))
	upperNext := false
	for i, r := range key {
		if r == '_' || r == '-' {
			// A trailing separator has nothing to capitalize; keep it.
			if i == len(key)-1 {
				b.WriteRune(r)
			}
			upperNext = true
			continue
		}
		if upperNext {
			b.WriteRune(unicode.ToUpper(r))
			upperNext = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SnakeKey converts a camelCase key to snake_case.
func SnakeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 4)
	for i, r := range key {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ToCamelCaseKeys returns a copy of v with every map key converted by CamelKey,
// at every depth. Primitive values are returned as-is.
func ToCamelCaseKeys(v any) any {
	return convertKeys(v, CamelKey)
}

// ToSnakeCaseKeys returns a copy of v with every map key converted by SnakeKey.
func ToSnakeCaseKeys(v any) any {
	return convertKeys(v, SnakeKey)
}

func convertKeys(v any, fn func(string) string) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[fn(k)] = convertKeys(inner, fn)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = convertKeys(inner, fn)
		}
		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = convertKeys(inner, fn)
		}
		return out
	default:
		return v
	}
}
