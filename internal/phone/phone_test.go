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
		{"plain ten digits", "9876543210", "9876543210", false},
		{"spaces and dashes stripped", "98765 432-10", "9876543210", false},
		{"country code prefix is too long", "+919876543210", "", true},
		{"nine digits", "987654321", "", true},
		{"eleven digits", "98765432101", "", true},
		{"letters only", "abcdefghij", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalid)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMask(t *testing.T) {
	assert.Equal(t, "******3210", Mask("9876543210"))
	assert.Equal(t, "123", Mask("123"))
	assert.Equal(t, "", Mask(""))
	assert.Equal(t, "1234", Mask("1234"))
}
