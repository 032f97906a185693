package runtime

import (
	"strings"

	"github.com/aretw0/chatflow/pkg/domain"
)

var (
	metLabels    = map[string]bool{"true": true, "met": true, "yes": true, "condition met": true}
	notMetLabels = map[string]bool{"false": true, "not_met": true, "no": true, "condition not met": true}
)

// selectBranch picks the outgoing connection of a condition node matching its outcome.
// A connection matches through its condition, or its label when the condition is empty.
// Without a match the first connection is taken, as in linear traversal.
func selectBranch(outgoing []domain.Connection, met bool) *domain.Connection {
	if len(outgoing) == 0 {
		return nil
	}

	wanted := notMetLabels
	if met {
		wanted = metLabels
	}
	for i := range outgoing {
		key := outgoing[i].Condition
		if key == "" {
			key = outgoing[i].Label
		}
		if wanted[strings.ToLower(strings.TrimSpace(key))] {
			return &outgoing[i]
		}
	}
	return &outgoing[0]
}
