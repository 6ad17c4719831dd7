package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"local eight digits", "98123456", "21698123456"},
		{"already prefixed", "21698123456", "21698123456"},
		{"plus prefix", "+21698123456", "21698123456"},
		{"double zero prefix", "0021698123456", "21698123456"},
		{"spaces trimmed", " 216 98 123 456 ", "21698123456"},
		{"too short", "9812345", ""},
		{"wrong country code", "33612345678", ""},
		{"letters rejected", "98abc456", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.in))
		})
	}
}
