package runtime

import (
	"math"
	"strconv"
	"strings"

	"github.com/aretw0/chatflow/pkg/domain"
)

// EvaluateConditions reports whether every condition holds (logical AND).
// An empty list is vacuously met.
func EvaluateConditions(conditions []domain.Condition, vars map[string]any, input string) bool {
	for _, c := range conditions {
		if !evaluateCondition(c, vars, input) {
			return false
		}
	}
	return true
}

func evaluateCondition(c domain.Condition, vars map[string]any, input string) bool {
	actual := input
	if v, ok := vars[c.Field]; ok {
		actual = Stringify(v)
	}

	switch c.Operator {
	case domain.OpEquals:
		return actual == c.Value
	case domain.OpContains:
		return strings.Contains(strings.ToLower(actual), strings.ToLower(c.Value))
	case domain.OpStartsWith:
		return strings.HasPrefix(strings.ToLower(actual), strings.ToLower(c.Value))
	case domain.OpEndsWith:
		return strings.HasSuffix(strings.ToLower(actual), strings.ToLower(c.Value))
	case domain.OpGreaterThan:
		return parseNumber(actual) > parseNumber(c.Value)
	case domain.OpLessThan:
		return parseNumber(actual) < parseNumber(c.Value)
	default:
		return false
	}
}

// parseNumber returns NaN for non-numeric text, so comparisons against it are always false.
func parseNumber(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
