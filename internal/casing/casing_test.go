package casing

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestCamelKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"orchestration_id", "orchestrationId"},
		{"overall_progress", "overallProgress"},
		{"estimated-duration-seconds", "estimatedDurationSeconds"},
		{"zenem_field", "zenemField"},
		{"alreadyCamel", "alreadyCamel"},
		{"id", "id"},
		{"", ""},
		{"trailing_", "trailing_"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CamelKey(tt.in))
		})
	}
}

func TestSnakeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"orchestrationId", "orchestration_id"},
		{"connectionIds", "connection_ids"},
		{"targets", "targets"},
		{"already_snake", "already_snake"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SnakeKey(tt.in))
		})
	}
}

func TestToCamelCaseKeys_Nested(t *testing.T) {
	in := map[string]any{
		"orchestration_id": "abc",
		"overall_progress": 40.0,
		"targets": []any{
			map[string]any{"target_name": "EPICS", "records-processed": 12.0},
			"plain",
		},
		"meta": map[string]any{
			"last_updated_at": nil,
			"is_done":         false,
		},
	}

	want := map[string]any{
		"orchestrationId": "abc",
		"overallProgress": 40.0,
		"targets": []any{
			map[string]any{"targetName": "EPICS", "recordsProcessed": 12.0},
			"plain",
		},
		"meta": map[string]any{
			"lastUpdatedAt": nil,
			"isDone":        false,
		},
	}

	assert.Equal(t, want, ToCamelCaseKeys(in))
}

func TestToCamelCaseKeys_Primitives(t *testing.T) {
	assert.Equal(t, "some_value", ToCamelCaseKeys("some_value"))
	assert.Equal(t, 42.0, ToCamelCaseKeys(42.0))
	assert.Nil(t, ToCamelCaseKeys(nil))
}

func TestToCamelCaseKeys_CamelInputIsNoop(t *testing.T) {
	in := map[string]any{
		"orchestrationId": "abc",
		"targets":         []any{map[string]any{"targetName": "EPICS"}},
	}
	assert.Equal(t, in, ToCamelCaseKeys(in))
}

func TestToSnakeCaseKeys_RoundTrip(t *testing.T) {
	in := map[string]any{
		"targets":       []any{"EPICS"},
		"connectionIds": []any{"c1"},
		"nested":        map[string]any{"dateFrom": "2024-01-01"},
	}

	snake := ToSnakeCaseKeys(in)
	assert.Equal(t, map[string]any{
		"targets":        []any{"EPICS"},
		"connection_ids": []any{"c1"},
		"nested":         map[string]any{"date_from": "2024-01-01"},
	}, snake)

	assert.Equal(t, in, ToCamelCaseKeys(snake))
}

func TestCamelKey_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("snake and kebab keys convert to the same separator-free key", prop.ForAll(
		func(words []string) bool {
			snake := CamelKey(strings.Join(words, "_"))
			kebab := CamelKey(strings.Join(words, "-"))
			return snake == kebab && !strings.ContainsAny(snake, "_-")
		},
		gen.SliceOfN(3, gen.Identifier()),
	))

	properties.Property("conversion is idempotent", prop.ForAll(
		func(words []string) bool {
			once := CamelKey(strings.Join(words, "_"))
			return CamelKey(once) == once
		},
		gen.SliceOf(gen.Identifier()),
	))

	properties.Property("nested maps are converted at every depth", prop.ForAll(
		func(a, b string) bool {
			in := map[string]any{a + "_x": []any{map[string]any{b + "_y": 1}}}
			out, ok := ToCamelCaseKeys(in).(map[string]any)
			if !ok {
				return false
			}
			inner, ok := out[a+"X"].([]any)
			if !ok || len(inner) != 1 {
				return false
			}
			m, ok := inner[0].(map[string]any)
			if !ok {
				return false
			}
			_, found := m[b+"Y"]
			return found
		},
		gen.Identifier(),
		gen.Identifier(),
	))

	properties.TestingRun(t)
}
