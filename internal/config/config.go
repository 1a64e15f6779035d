// Package config resolves runtime settings from the environment, an optional
// .env file and command-line overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvAPIURL        = "CARMARKET_API_URL"
	EnvAPITimeout    = "CARMARKET_API_TIMEOUT"
	EnvToken         = "CARMARKET_TOKEN"
	EnvDB            = "CARMARKET_DB"
	EnvLog           = "CARMARKET_LOG"
	EnvLogLevel      = "CARMARKET_LOG_LEVEL"
	EnvResendSeconds = "CARMARKET_RESEND_SECONDS"
	EnvPhone         = "CARMARKET_PHONE"
)

// Config holds all client configuration.
type Config struct {
	// APIURL is the marketplace backend base URL.
	APIURL string
	// APITimeout bounds a single request. Default: 15s.
	APITimeout time.Duration
	// Token is sent as a bearer token when set.
	Token string

	// DBPath is the request log database. Empty disables the log.
	DBPath string

	// LogPath receives structured logs. Empty discards them; the TUI owns
	// stdout.
	LogPath  string
	LogLevel slog.Level

	// ResendSeconds is the verification code resend cooldown.
	ResendSeconds int
	// Phone is the number the verification screen sends codes to.
	Phone string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		APIURL:        "http://localhost:8080",
		APITimeout:    15 * time.Second,
		LogLevel:      slog.LevelInfo,
		ResendSeconds: 60,
	}
}

// Load reads an optional .env file from the working directory and then the
// process environment on top of DefaultConfig. Variables already set in the
// environment win over the file.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, falling back to defaults
// for unset keys.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := DefaultConfig()

	if v := getenv(EnvAPIURL); v != "" {
		cfg.APIURL = v
	}
	if v := getenv(EnvAPITimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvAPITimeout, err)
		}
		cfg.APITimeout = d
	}
	cfg.Token = getenv(EnvToken)
	cfg.DBPath = getenv(EnvDB)
	cfg.LogPath = getenv(EnvLog)
	if v := getenv(EnvLogLevel); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
	}
	if v := getenv(EnvResendSeconds); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvResendSeconds, err)
		}
		cfg.ResendSeconds = n
	}
	cfg.Phone = strings.TrimSpace(getenv(EnvPhone))

	return cfg, cfg.Validate()
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api url %q: scheme must be http or https", c.APIURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api url %q: missing host", c.APIURL)
	}
	if c.APITimeout <= 0 {
		return errors.New("api timeout must be positive")
	}
	if c.ResendSeconds < 0 {
		return errors.New("resend cooldown must not be negative")
	}
	return nil
}

// ResolveDBPath returns c.DBPath when set, creating its parent directory,
// and DefaultDBPath otherwise.
func (c Config) ResolveDBPath() (string, error) {
	if c.DBPath != "" {
		return c.DBPath, ensureDir(c.DBPath)
	}
	return DefaultDBPath()
}

// DefaultDBPath resolves the request log path in priority order:
// 1. CARMARKET_DB environment variable
// 2. $XDG_DATA_HOME/carmarket/carmarket.db
// 3. ~/.local/share/carmarket/carmarket.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv(EnvDB); p != "" {
		return p, ensureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "carmarket", "carmarket.db")
	return p, ensureDir(p)
}

// ensureDir creates the parent directory of path if it doesn't exist.
func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
