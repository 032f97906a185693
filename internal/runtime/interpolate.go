package runtime

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

var tokenPattern = regexp.MustCompile(`\{\{\s*([^{}\s]+)\s*\}\}`)

// Interpolate replaces every {{name}} token with the string form of vars[name].
// Tokens naming unbound variables are left untouched.
func Interpolate(template string, vars map[string]any) string {
	if len(vars) == 0 {
		return template
	}
	return tokenPattern.ReplaceAllStringFunc(template, func(token string) string {
		name := tokenPattern.FindStringSubmatch(token)[1]
		value, ok := vars[name]
		if !ok {
			return token
		}
		return Stringify(value)
	})
}

// Stringify renders a variable value as text for templates and comparisons.
// Composite values are rendered as JSON.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, json.Number:
		return fmt.Sprint(val)
	case fmt.Stringer:
		return val.String()
	default:
		bytes, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(bytes)
	}
}
