package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"70", 70, true},
		{" 85 ", 85, true},
		{"70,5", 70.5, true},
		{"72.5 %", 72.5, true},
		{"1\u00A0000", 1000, true},
		{"-3", -3, true},
		{"", 0, false},
		{"high", 0, false},
		{"-", 0, false},
		{"1.2.3", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
