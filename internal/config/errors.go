package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSetting matches every *ConfigError via errors.Is.
var ErrInvalidSetting = errors.New("invalid setting")

// ConfigError reports a setting that failed parsing or its constraint.
// Load never returns a partially valid Settings alongside it.
type ConfigError struct {
	Key        string // setting key, e.g. max_concurrent_integrations
	EnvVar     string // variable that controls it
	Value      string // raw value as resolved
	Constraint string // human readable constraint, e.g. "must be greater than 0"
	Err        error  // underlying parse error, if any
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("invalid setting %s (%s=%q): %s", e.Key, e.EnvVar, e.Value, e.Constraint)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidSetting
}

// EnvVarName returns the canonical environment variable for a setting key.
func EnvVarName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(key)
}
