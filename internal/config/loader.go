package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"teamdocs/pkg/logging"
)

const (
	userConfigDir  = ".config/teamdocs"
	configFileName = "config.yaml"
)

// Environment variables read by ApplyEnv.
const (
	EnvAPIURL         = "TEAMDOCS_API_URL"
	EnvFrontendURL    = "TEAMDOCS_FRONTEND_URL"
	EnvToken          = "TEAMDOCS_TOKEN"
	EnvSessionCookie  = "TEAMDOCS_SESSION_COOKIE"
	EnvUserID         = "TEAMDOCS_USER_ID"
	EnvSessionID      = "TEAMDOCS_SESSION_ID"
	EnvSessionBackend = "TEAMDOCS_SESSION_BACKEND"
	EnvRedisAddr      = "TEAMDOCS_REDIS_ADDR"
	EnvCallbackAddr   = "TEAMDOCS_CALLBACK_ADDR"
)

var osUserHomeDir = os.UserHomeDir

// DefaultConfigPath returns ~/.config/teamdocs.
func DefaultConfigPath() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// LoadConfig reads config.yaml from configPath on top of the defaults. A
// missing file is not an error.
func LoadConfig(configPath string) (Config, error) {
	config := GetDefaultConfig()
	configFilePath := filepath.Join(configPath, configFileName)

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("Config", "No config.yaml found at %s, using defaults", configFilePath)
			return config, nil
		}
		return Config{}, &ConfigurationError{FilePath: configFilePath, ErrorType: "io", Err: err}
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, &ConfigurationError{
			FilePath:  configFilePath,
			ErrorType: "parse",
			Err:       err,
			Suggestions: []string{
				"check the YAML indentation",
				"durations use Go syntax, e.g. 300ms or 12h",
			},
		}
	}
	logging.Debug("Config", "Loaded configuration from %s", configFilePath)
	return config, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return &ConfigurationError{FilePath: f, ErrorType: "parse", Err: err}
		}
		logging.Debug("Config", "Loaded environment from %s", f)
	}
	return nil
}

// ApplyEnv overrides fields from TEAMDOCS_* variables. lookup is usually
// os.LookupEnv.
func ApplyEnv(config *Config, lookup func(string) (string, bool)) error {
	var errs ValidationErrors

	setString := func(env string, dst *string) {
		if v, ok := lookup(env); ok && v != "" {
			*dst = v
		}
	}
	setString(EnvAPIURL, &config.APIURL)
	setString(EnvFrontendURL, &config.FrontendURL)
	setString(EnvToken, &config.Token)
	setString(EnvSessionCookie, &config.SessionCookie)
	setString(EnvSessionID, &config.Session.ID)
	setString(EnvSessionBackend, &config.Session.Backend)
	setString(EnvRedisAddr, &config.Session.Redis.Addr)
	setString(EnvCallbackAddr, &config.Callback.Addr)

	if v, ok := lookup(EnvUserID); ok && v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			errs.Add(EnvUserID, "must be an integer", v)
		} else {
			config.User.ID = id
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// Load resolves the full configuration from configPath, .env and the
// environment, and validates it.
func Load(configPath string) (Config, error) {
	if configPath == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		configPath = p
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		return Config{}, err
	}
	if err := LoadDotEnv(); err != nil {
		return Config{}, err
	}
	if err := ApplyEnv(&config, os.LookupEnv); err != nil {
		return Config{}, err
	}
	return config, nil
}
