package validation

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEmail(t *testing.T) {
	valid := []string{"ana@example.com", "first.last+art@studio.co.uk"}
	invalid := []string{"", "ana", "ana@", "@example.com", "ana@example", strings.Repeat("a", 250) + "@x.io"}

	for _, e := range valid {
		assert.True(t, IsEmail(e), e)
	}
	for _, e := range invalid {
		assert.False(t, IsEmail(e), e)
	}
}

func TestStringValidation(t *testing.T) {
	assert.True(t, NewStringValidation("").WithRequired(false).Validate())
	assert.False(t, NewStringValidation("").Validate())
	assert.False(t, NewStringValidation("ab").WithMinLength(3).Validate())
	assert.True(t, NewStringValidation("abc").WithMinLength(3).WithMaxLength(3).Validate())
}

func TestRegister(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	type request struct {
		Status string `validate:"required,classstatus"`
		Role   string `validate:"omitempty,role"`
	}

	assert.NoError(t, v.Struct(request{Status: "approved", Role: "admin"}))
	assert.NoError(t, v.Struct(request{Status: "DENIED"}))
	assert.Error(t, v.Struct(request{Status: "archived"}))
	assert.Error(t, v.Struct(request{Status: "pending", Role: "wizard"}))
}
