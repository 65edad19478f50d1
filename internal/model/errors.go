package model

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigurationError reports required key or grouping fields that are absent
// from an input. It is fatal: a run that hits one emits no partial result.
type ConfigurationError struct {
	Entity string   // e.g. "sales ledger", "purchase aggregate"
	Fields []string // missing field or column names
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: missing required field(s): %s", e.Entity, strings.Join(e.Fields, ", "))
}

// NewConfigurationError builds a ConfigurationError for the given entity.
func NewConfigurationError(entity string, fields ...string) *ConfigurationError {
	return &ConfigurationError{Entity: entity, Fields: fields}
}

// IsConfigurationError returns true if err (or any error in its chain) is a
// ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
