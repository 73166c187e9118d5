package config

import (
	"fmt"
	"strings"
)

// ConfigurationError reports a configuration file that could not be used.
type ConfigurationError struct {
	FilePath    string
	ErrorType   string // io or parse
	Err         error
	Suggestions []string
}

func (ce *ConfigurationError) Error() string {
	return fmt.Sprintf("%s error in %s: %v", ce.ErrorType, ce.FilePath, ce.Err)
}

func (ce *ConfigurationError) Unwrap() error {
	return ce.Err
}

// DetailedError returns the error with suggestions, one per line.
func (ce *ConfigurationError) DetailedError() string {
	parts := []string{ce.Error()}
	if len(ce.Suggestions) > 0 {
		parts = append(parts, "  Suggestions:")
		for _, s := range ce.Suggestions {
			parts = append(parts, "    - "+s)
		}
	}
	return strings.Join(parts, "\n")
}
