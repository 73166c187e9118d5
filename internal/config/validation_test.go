package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.APIURL = "not a url"
	cfg.Session.Backend = "sqlite"
	cfg.Drive.Debounce = -1
	cfg.Callback.Addr = ""

	err := cfg.Validate()
	require.Error(t, err)

	var errs ValidationErrors
	require.True(t, errors.As(err, &errs))
	assert.Len(t, errs, 4)
	assert.Contains(t, err.Error(), "apiUrl")
	assert.Contains(t, err.Error(), "session.backend")
}

func TestValidate_RedisNeedsAddr(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Session.Backend = SessionBackendRedis
	cfg.Session.Redis.Addr = " "
	assert.ErrorContains(t, cfg.Validate(), "session.redis.addr")
}

func TestValidateOneOf(t *testing.T) {
	assert.NoError(t, ValidateOneOf("f", "a", []string{"a", "b"}))
	err := ValidateOneOf("f", "c", []string{"a", "b"})
	assert.EqualError(t, err, "field 'f': must be one of: a, b")
}

func TestValidationErrors_Error(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "no validation errors", errs.Error())
	errs.Add("", "plain message")
	assert.Equal(t, "plain message", errs.Error())
	errs.Add("x", "bad")
	assert.Equal(t, "validation failed: plain message; field 'x': bad", errs.Error())
}
