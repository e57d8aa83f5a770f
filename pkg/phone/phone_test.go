package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"already E.164", "+905551234567", "+905551234567", false},
		{"international prefix", "00905551234567", "+905551234567", false},
		{"bare country code", "905551234567", "+905551234567", false},
		{"national with leading zero", "05551234567", "+905551234567", false},
		{"spaces and separators", "+90 (555) 123-45.67", "+905551234567", false},
		{"empty", "", "", true},
		{"only separators", " - ()", "", true},
		{"letters", "+90555abc4567", "", true},
		{"too short", "+9055", "", true},
		{"too long", "+9055512345678901234", "", true},
		{"leading zero after plus", "+0555123456", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidNumber)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMask(t *testing.T) {
	assert.Equal(t, "+90********567", Mask("+905551234567"))
	assert.Equal(t, "+12******321", Mask("+12025550321"))
	assert.Equal(t, "******", Mask("+90555"))
	assert.Equal(t, "", Mask(""))
}
