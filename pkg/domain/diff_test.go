package domain

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestVariableDelta(t *testing.T) {
	tests := []struct {
		name string
		old  map[string]any
		new  map[string]any
		want map[string]any
	}{
		{
			name: "Initial Load (Old is Nil)",
			old:  nil,
			new:  map[string]any{"a": 1},
			want: map[string]any{"a": 1},
		},
		{
			name: "No Changes",
			old:  map[string]any{"a": 1},
			new:  map[string]any{"a": 1},
			want: nil,
		},
		{
			name: "Added & Modified",
			old:  map[string]any{"a": 1, "b": "old"},
			new:  map[string]any{"a": 1, "b": "new", "c": true},
			want: map[string]any{"b": "new", "c": true},
		},
		{
			name: "Deletion",
			old:  map[string]any{"a": 1, "b": 2},
			new:  map[string]any{"a": 1},
			want: map[string]any{"b": nil},
		},
		{
			name: "Nested Value Changed",
			old:  map[string]any{"user": map[string]any{"name": "Sam"}},
			new:  map[string]any{"user": map[string]any{"name": "Alex"}},
			want: map[string]any{"user": map[string]any{"name": "Alex"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VariableDelta(tt.old, tt.new)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("VariableDelta() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVariableDeltaJSONSerialization(t *testing.T) {
	t.Run("Deletions as Null", func(t *testing.T) {
		delta := VariableDelta(map[string]any{"a": 1, "b": 2}, map[string]any{"a": 1})
		bytes, _ := json.Marshal(delta)
		if !strings.Contains(string(bytes), `"b":null`) {
			t.Errorf("JSON should contain 'b':null for deletion, got: %s", string(bytes))
		}
	})
}
