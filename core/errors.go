package core

import "fmt"

// ConfigurationError reports an invalid construction-time setup such as
// duplicate tool or server names, or out-of-range memory bounds. It is always
// raised before execution starts, never mid-run.
type ConfigurationError struct {
	Component string // subsystem that rejected the configuration
	Message   string
}

func (e *ConfigurationError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// NewConfigurationError creates a ConfigurationError for the given subsystem.
func NewConfigurationError(component, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Component: component, Message: fmt.Sprintf(format, args...)}
}
