package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// ValidateOneOf checks if a value is in a list of allowed values
func ValidateOneOf(field, value string, allowed []string) error {
	for _, allowedValue := range allowed {
		if value == allowedValue {
			return nil
		}
	}
	return ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

// ValidateHTTPURL checks that value is an absolute http(s) URL.
func ValidateHTTPURL(field, value string) error {
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ValidationError{
			Field:   field,
			Value:   value,
			Message: "must be an absolute http or https URL",
		}
	}
	return nil
}

// Validate checks the configuration and returns every problem found.
func (c Config) Validate() error {
	var errs ValidationErrors

	collect := func(err error) {
		if ve, ok := err.(ValidationError); ok {
			errs = append(errs, ve)
		}
	}

	collect(ValidateHTTPURL("apiUrl", c.APIURL))
	collect(ValidateHTTPURL("frontendUrl", c.FrontendURL))
	collect(ValidateOneOf("session.backend", c.Session.Backend,
		[]string{SessionBackendFile, SessionBackendMemory, SessionBackendRedis}))

	if c.Session.Backend == SessionBackendRedis && strings.TrimSpace(c.Session.Redis.Addr) == "" {
		errs.Add("session.redis.addr", "is required for the redis session backend")
	}
	if c.Session.Redis.TTL < 0 {
		errs.Add("session.redis.ttl", "must not be negative", c.Session.Redis.TTL)
	}
	if c.Drive.Debounce < 0 {
		errs.Add("drive.debounce", "must not be negative", c.Drive.Debounce)
	}
	if c.User.ID < 0 {
		errs.Add("user.id", "must not be negative", c.User.ID)
	}
	if strings.TrimSpace(c.Callback.Addr) == "" {
		errs.Add("callback.addr", "is required")
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
