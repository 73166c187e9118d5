// Package config loads teamdocs configuration.
//
// Configuration is resolved in layers, later layers winning:
//
//  1. built-in defaults (GetDefaultConfig)
//  2. config.yaml in the configuration directory (~/.config/teamdocs)
//  3. a .env file in the working directory, loaded into the environment
//  4. TEAMDOCS_* environment variables
//  5. command-line flags, applied by cmd
//
// Example config.yaml:
//
//	apiUrl: https://teamdocs.example.com
//	frontendUrl: https://teamdocs.example.com
//	user:
//	  id: 101
//	  name: Ada
//	session:
//	  backend: redis
//	  redis:
//	    addr: localhost:6379
//	drive:
//	  debounce: 300ms
//
// The bearer token and session cookie are secrets. Prefer the environment or
// .env over config.yaml for them.
package config
