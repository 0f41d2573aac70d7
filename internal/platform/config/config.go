// Package config loads and validates command configuration.
//
// Configuration is read from environment variables first (struct tags from
// caarlos0/env) and then checked against go-playground/validator tags, so
// flag overrides applied between the two steps are validated as well.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks target against its validate struct tags.
//
// Field failures are flattened into a single message naming each field and
// the rule it broke.
func Validate(target any) error {
	err := validate.Struct(target)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fmt.Sprintf("%s: %s (got %v)", fe.Field(), rule, fe.Value()))
	}
	return fmt.Errorf("validate config: %s", strings.Join(parts, "; "))
}
