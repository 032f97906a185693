package domain

import (
	"reflect"
)

// VariableDelta calculates the variables added, modified or deleted between two contexts.
// Deleted keys are present with a nil value so clients can merge the delta locally.
// It returns nil when nothing changed.
func VariableDelta(old, new map[string]any) map[string]any {
	delta := make(map[string]any)

	// Check for Added or Modified
	for k, newVal := range new {
		oldVal, exists := old[k]
		if !exists || !reflect.DeepEqual(oldVal, newVal) {
			delta[k] = newVal
		}
	}

	// Check for Deletions
	for k := range old {
		if _, exists := new[k]; !exists {
			delta[k] = nil
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}
