// Package config loads process bootstrap configuration from a .env file (if
// present) layered with environment variables, the way
// ealebed-gh-app-cherry-pick-poc loads its AWS/GitHub client configuration
// before constructing any clients.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the process-wide bootstrap settings from spec.md §6.
type Config struct {
	// BindIP is the interface the HTTP server listens on.
	BindIP string
	// Port is the TCP port the HTTP server listens on.
	Port string
	// BaseURL prefixes queue URLs: <BaseURL>/<queue_name>.
	BaseURL string
	// LogLevel controls the verbosity of internal/logging's default logger.
	LogLevel string
}

// Load reads a .env file in the working directory if one exists, then
// overlays values from the environment, applying defaults for anything
// unset.
func Load() (Config, error) {
	// godotenv.Load returns an error when no .env file is present; that's
	// expected outside of local development, so it is not fatal.
	_ = godotenv.Load()

	cfg := Config{
		BindIP:   getenv("VASSAL_BIND_IP", "0.0.0.0"),
		Port:     getenv("VASSAL_PORT", "9324"),
		BaseURL:  getenv("VASSAL_BASE_URL", ""),
		LogLevel: getenv("VASSAL_LOG_LEVEL", "info"),
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("http://%s:%s", displayHost(cfg.BindIP), cfg.Port)
	}

	return cfg, nil
}

func displayHost(bindIP string) string {
	if bindIP == "0.0.0.0" || bindIP == "" {
		return "localhost"
	}
	return bindIP
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
