// Package config parses the ini-style configuration of the motion smoothing
// daemon and maps sections onto the typed settings of its components.
// Every lookup is access tracked so unknown sections and misspelled options
// are reported instead of silently ignored.
package config

import (
	"fmt"
	"strings"
)

// ConfigError reports a configuration problem with enough context to point
// the user at the offending section and option.
type ConfigError struct {
	Section string
	Option  string
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	switch {
	case e.Option != "":
		return fmt.Sprintf("option %q in section [%s]: %s", e.Option, e.Section, e.Message)
	case e.Section != "":
		return fmt.Sprintf("section [%s]: %s", e.Section, e.Message)
	}
	return e.Message
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// NewConfigError builds an error for an option of a section. Either context
// string may be empty.
func NewConfigError(section, option, message string) *ConfigError {
	return &ConfigError{Section: section, Option: option, Message: message}
}

// WrapError attaches section and option context to an error raised by
// another package, keeping it reachable through errors.Is/As.
func WrapError(section, option string, err error) *ConfigError {
	return &ConfigError{Section: section, Option: option, Message: err.Error(), Cause: err}
}

func ErrMissingOption(section, option string) *ConfigError {
	return NewConfigError(section, option, "must be specified")
}

func ErrMissingSection(section string) *ConfigError {
	return NewConfigError(section, "", "section not found")
}

func ErrInvalidValue(section, option, value, expected string) *ConfigError {
	return NewConfigError(section, option,
		fmt.Sprintf("%q is not a valid %s", value, expected))
}

func ErrOutOfRange(section, option string, value float64, constraint string) *ConfigError {
	return NewConfigError(section, option, fmt.Sprintf("value %v %s", value, constraint))
}

func ErrInvalidChoice(section, option, value string, choices []string) *ConfigError {
	return NewConfigError(section, option,
		fmt.Sprintf("%q is not one of %s", value, strings.Join(choices, ", ")))
}
