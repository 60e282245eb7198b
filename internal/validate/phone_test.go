package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"plain 10 digits", "9876543210", "+919876543210", true},
		{"with country code", "919876543210", "+919876543210", true},
		{"with plus prefix", "+91 98765 43210", "+919876543210", true},
		{"with leading zero", "09876543210", "+919876543210", true},
		{"with dashes", "98765-43210", "+919876543210", true},
		{"too short", "98765", "", false},
		{"letters only", "call me maybe", "", false},
		{"empty", "", "", false},
		{"nine digits", "987654321", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizePhone(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
