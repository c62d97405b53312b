package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFloatSafe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected float64
	}{
		{"45000.50", 45000.50},
		{"0", 0},
		{"", 0},
		{"not-a-number", 0},
		{"-3.2", -3.2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseFloatSafe(tt.input), "input %q", tt.input)
	}
}

func TestSanitizeFloat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, SanitizeFloat(math.NaN()))
	assert.Equal(t, 0.0, SanitizeFloat(math.Inf(1)))
	assert.Equal(t, 0.0, SanitizeFloat(math.Inf(-1)))
	assert.Equal(t, 42.5, SanitizeFloat(42.5))
}
