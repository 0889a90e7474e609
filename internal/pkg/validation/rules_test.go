package validation

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "secret123", false},
		{"too short", "abc12", true},
		{"no digit", "passwordonly", true},
		{"no letter", "1234567890", true},
		{"whitespace", "pass word1", true},
		{"too long", "a1234567890123456789012345678901", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseEntryTime(t *testing.T) {
	v, err := ParseEntryTime(" 08:15 ")
	require.NoError(t, err)
	assert.Equal(t, "08:15", v)

	_, err = ParseEntryTime("25:00")
	assert.Error(t, err)
	_, err = ParseEntryTime("8:15")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-10-03")
	require.NoError(t, err)
	assert.Equal(t, 3, d.Day())

	_, err = ParseDate("03/10/2024")
	assert.Error(t, err)
}

type sample struct {
	Login string `validate:"required,login"`
	Phone string `validate:"omitempty,phone"`
	Tag   string `validate:"omitempty,tagname"`
	Entry string `validate:"omitempty,entrytime"`
	Day   string `validate:"omitempty,isodate"`
}

func TestRegisterRules(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterRules(v))

	assert.NoError(t, v.Struct(sample{Login: "mario.rossi", Phone: "+390811234567", Tag: "art-deco", Entry: "09:05", Day: "2024-12-01"}))

	err := v.Struct(sample{Login: "bad login!", Tag: "Art Deco"})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 2)

	messages := []string{FieldMessage(verrs[0]), FieldMessage(verrs[1])}
	assert.Contains(t, messages, "Login must be 5-20 letters, digits, dots or underscores")
	assert.Contains(t, messages, "Tag must be 2-30 lowercase letters, digits or dashes")
}
