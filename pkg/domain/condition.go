package domain

// Operator is a comparison used by a Condition.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpContains    Operator = "contains"
	OpStartsWith  Operator = "starts_with"
	OpEndsWith    Operator = "ends_with"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
)

// Condition compares a variable (or the raw user input) against a value.
// If Field is not bound in the variable context, the user input is compared instead.
type Condition struct {
	Field    string   `json:"field" yaml:"field"`
	Operator Operator `json:"operator" yaml:"operator"`
	Value    string   `json:"value" yaml:"value"`
}
