package validation

import (
	"fmt"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/monchobi/artschool/internal/app/models"
)

// Validation rule patterns
var (
	// Email validation pattern, applied to lowercase input
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,24}$`

	EmailMaxLength = 254
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	Email *regexp.Regexp
}{
	Email: regexp.MustCompile(EmailPattern),
}

// StringValidation checks a single string value.
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a new string validation
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{
		Value:    value,
		Required: true,
	}
}

// WithMinLength sets minimum length
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets regex pattern
func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

// WithRequired sets if field is required
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate performs validation
func (v *StringValidation) Validate() bool {
	if v.Value == "" {
		return !v.Required
	}
	if v.MinLen > 0 && len(v.Value) < v.MinLen {
		return false
	}
	if v.MaxLen > 0 && len(v.Value) > v.MaxLen {
		return false
	}
	if v.Pattern != nil && !v.Pattern.MatchString(v.Value) {
		return false
	}
	return true
}

// IsEmail reports whether s looks like an email address.
func IsEmail(s string) bool {
	return NewStringValidation(s).
		WithMaxLength(EmailMaxLength).
		WithPattern(CompiledPatterns.Email).
		Validate()
}

// RegisterCustomRules adds the "classstatus" and "role" tags to gin's validator.
func RegisterCustomRules() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return Register(v)
}

// Register adds the custom tags to v.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("classstatus", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseClassStatus(fl.Field().String())
		return ok
	}); err != nil {
		return err
	}
	return v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseRole(fl.Field().String())
		return ok
	})
}
