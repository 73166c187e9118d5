package config

import "time"

// Session backends.
const (
	SessionBackendFile   = "file"
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Config is the top-level configuration structure for teamdocs.
type Config struct {
	APIURL        string `yaml:"apiUrl"`
	FrontendURL   string `yaml:"frontendUrl"`
	Token         string `yaml:"token,omitempty"`
	SessionCookie string `yaml:"sessionCookie,omitempty"`

	User     UserConfig     `yaml:"user"`
	Session  SessionConfig  `yaml:"session"`
	Callback CallbackConfig `yaml:"callback"`
	Drive    DriveConfig    `yaml:"drive"`
}

// UserConfig identifies the signed-in user for permission checks.
type UserConfig struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name,omitempty"`
}

// SessionConfig selects where redirect flags live.
type SessionConfig struct {
	// ID pins the session identifier; empty derives it from the shell.
	ID       string      `yaml:"id,omitempty"`
	Backend  string      `yaml:"backend"`
	StateDir string      `yaml:"stateDir,omitempty"`
	Redis    RedisConfig `yaml:"redis"`
}

// RedisConfig is used when Session.Backend is redis.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password,omitempty"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// CallbackConfig configures the local OAuth callback listener.
type CallbackConfig struct {
	Addr string `yaml:"addr"`
}

// DriveConfig tunes the Drive connection flow.
type DriveConfig struct {
	Debounce    time.Duration `yaml:"debounce"`
	OpenBrowser bool          `yaml:"openBrowser"`
}
