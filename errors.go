package pagemd

import (
	"errors"
	"fmt"
)

// ErrUnsupportedProvider is returned when a provider cannot supply what the
// converter needs, such as accurate span geometry.
var ErrUnsupportedProvider = errors.New("provider does not support required capabilities")

// ConfigError describes an invalid converter configuration value. It is
// returned from terminal operations before any page is read.
type ConfigError struct {
	// Option is the offending option name.
	Option string
	// Reason says what is wrong with it.
	Reason string
}

// Error satisfies the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid option %s: %s", e.Option, e.Reason)
}

func configErr(option, reason string) *ConfigError {
	return &ConfigError{Option: option, Reason: reason}
}
