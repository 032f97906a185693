package sanitizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize_SizeLimit(t *testing.T) {
	limit := DefaultMaxInputSize

	tests := []struct {
		name      string
		inputSize int
		wantErr   bool
	}{
		{"Under Limit", limit - 1, false},
		{"Exact Limit", limit, false},
		{"Over Limit", limit + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Sanitize(strings.Repeat("a", tt.inputSize))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInputTooLarge)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitize_ControlChars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Normal Text", "Hello World", "Hello World"},
		{"Safe Controls", "Line1\nLine2\tTabbed\r", "Line1\nLine2\tTabbed\r"},
		{"ANSI Code", "\x1b[31mRed\x1b[0m", "[31mRed[0m"},
		{"Null Byte", "Null\x00Byte", "NullByte"},
		{"Bell", "Ding\x07", "Ding"},
		{"Unicode Kept", "Olá, {{name}} 👋", "Olá, {{name}} 👋"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sanitize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSanitize_EnvOverride(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "10")

	_, err := Sanitize("12345678901")
	assert.ErrorIs(t, err, ErrInputTooLarge)

	_, err = Sanitize("12345")
	assert.NoError(t, err)

	t.Setenv(EnvMaxInputSize, "not-a-number")
	assert.Equal(t, DefaultMaxInputSize, MaxInputSize())
}

func TestSanitize_InvalidUTF8(t *testing.T) {
	_, err := Sanitize("\xbd\xb2\x3d\xbc\x20\xe2\x8c\x98")
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestSanitizeWithLimit_ZeroDisablesLimit(t *testing.T) {
	got, err := SanitizeWithLimit(strings.Repeat("a", DefaultMaxInputSize*2), 0)
	require.NoError(t, err)
	assert.Len(t, got, DefaultMaxInputSize*2)
}
