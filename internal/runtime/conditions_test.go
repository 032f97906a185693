package runtime

import (
	"testing"

	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestEvaluateConditions(t *testing.T) {
	vars := map[string]any{"score": 7.5, "city": "Lisbon", "flag": true}

	tests := []struct {
		name  string
		conds []domain.Condition
		input string
		want  bool
	}{
		{"Empty Is Met", nil, "", true},
		{"Equals Variable", []domain.Condition{{Field: "city", Operator: domain.OpEquals, Value: "Lisbon"}}, "", true},
		{"Equals Is Case Sensitive", []domain.Condition{{Field: "city", Operator: domain.OpEquals, Value: "lisbon"}}, "", false},
		{"Contains Ignores Case", []domain.Condition{{Field: "city", Operator: domain.OpContains, Value: "SBO"}}, "", true},
		{"Starts With", []domain.Condition{{Field: "city", Operator: domain.OpStartsWith, Value: "lis"}}, "", true},
		{"Ends With", []domain.Condition{{Field: "city", Operator: domain.OpEndsWith, Value: "BON"}}, "", true},
		{"Greater Than", []domain.Condition{{Field: "score", Operator: domain.OpGreaterThan, Value: "7"}}, "", true},
		{"Less Than", []domain.Condition{{Field: "score", Operator: domain.OpLessThan, Value: "7"}}, "", false},
		{"Non Numeric Compare", []domain.Condition{{Field: "city", Operator: domain.OpGreaterThan, Value: "1"}}, "", false},
		{"Bool Stringified", []domain.Condition{{Field: "flag", Operator: domain.OpEquals, Value: "true"}}, "", true},
		{"Missing Field Uses Input", []domain.Condition{{Field: "message", Operator: domain.OpContains, Value: "refund"}}, "I want a REFUND", true},
		{"Unknown Operator", []domain.Condition{{Field: "city", Operator: "matches", Value: "L"}}, "", false},
		{"All Must Hold", []domain.Condition{
			{Field: "city", Operator: domain.OpEquals, Value: "Lisbon"},
			{Field: "score", Operator: domain.OpLessThan, Value: "5"},
		}, "", false},
		{"All Hold", []domain.Condition{
			{Field: "city", Operator: domain.OpEquals, Value: "Lisbon"},
			{Field: "score", Operator: domain.OpLessThan, Value: "10"},
		}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateConditions(tt.conds, vars, tt.input))
		})
	}
}

func TestSelectBranch(t *testing.T) {
	out := []domain.Connection{
		{ID: "a", Target: "x"},
		{ID: "b", Target: "y", Label: "Condition Not Met"},
		{ID: "c", Target: "z", Condition: "yes"},
	}

	assert.Equal(t, "c", selectBranch(out, true).ID)
	assert.Equal(t, "b", selectBranch(out, false).ID)
	assert.Equal(t, "a", selectBranch(out[:1], true).ID)
	assert.Nil(t, selectBranch(nil, true))
}
