package config

import "time"

const (
	DefaultAPIURL       = "http://localhost:8000"
	DefaultFrontendURL  = "http://localhost:3000"
	DefaultCallbackAddr = "127.0.0.1:3000"
	DefaultDebounce     = 300 * time.Millisecond
	DefaultRedisAddr    = "localhost:6379"
	DefaultRedisTTL     = 12 * time.Hour
)

// GetDefaultConfig returns the configuration used when nothing is set.
func GetDefaultConfig() Config {
	return Config{
		APIURL:      DefaultAPIURL,
		FrontendURL: DefaultFrontendURL,
		Session: SessionConfig{
			Backend: SessionBackendFile,
			Redis: RedisConfig{
				Addr: DefaultRedisAddr,
				TTL:  DefaultRedisTTL,
			},
		},
		Callback: CallbackConfig{Addr: DefaultCallbackAddr},
		Drive: DriveConfig{
			Debounce:    DefaultDebounce,
			OpenBrowser: true,
		},
	}
}
