package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator is a wrapper around go-playground/validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		validate: validator.New(),
	}
}

// Validate validates a struct using validation tags
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return v.formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors into readable messages
func (v *Validator) formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range validationErrs {
			messages = append(messages, fmt.Sprintf(
				"field '%s' failed validation: %s (value: '%v')",
				e.Field(),
				e.Tag(),
				e.Value(),
			))
		}
		return fmt.Errorf("validation failed:\n  %s", strings.Join(messages, "\n  "))
	}
	return err
}

// ValidateConfig validates the entire configuration
func ValidateConfig(cfg *Config) error {
	v := NewValidator()
	if err := v.Validate(cfg); err != nil {
		return err
	}

	// Cross-field checks the tag language cannot express.
	mains := 0
	for _, d := range cfg.World.Depots {
		if d.Main {
			mains++
		}
		if d.X >= cfg.World.Grid.Width || d.Y >= cfg.World.Grid.Height {
			return fmt.Errorf("depot %s at (%d,%d) is outside the %dx%d grid",
				d.ID, d.X, d.Y, cfg.World.Grid.Width, cfg.World.Grid.Height)
		}
	}
	if mains != 1 {
		return fmt.Errorf("exactly one main depot required, got %d", mains)
	}

	return nil
}
