package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookup(env map[string]string) func(string) string {
	return func(k string) string { return env[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(lookup(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 60, cfg.ResendSeconds)
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(lookup(map[string]string{
		EnvAPIURL:        "https://api.example.kz",
		EnvAPITimeout:    "3s",
		EnvToken:         "tok",
		EnvDB:            "/tmp/x.db",
		EnvLog:           "/tmp/x.log",
		EnvLogLevel:      "debug",
		EnvResendSeconds: "30",
		EnvPhone:         " +77011234567 ",
	}))
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.kz", cfg.APIURL)
	assert.Equal(t, 3*time.Second, cfg.APITimeout)
	assert.Equal(t, "tok", cfg.Token)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, "/tmp/x.log", cfg.LogPath)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 30, cfg.ResendSeconds)
	assert.Equal(t, "+77011234567", cfg.Phone)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad timeout", map[string]string{EnvAPITimeout: "soon"}},
		{"zero timeout", map[string]string{EnvAPITimeout: "0s"}},
		{"bad level", map[string]string{EnvLogLevel: "loud"}},
		{"bad resend", map[string]string{EnvResendSeconds: "x"}},
		{"negative resend", map[string]string{EnvResendSeconds: "-1"}},
		{"bad scheme", map[string]string{EnvAPIURL: "ftp://host"}},
		{"no host", map[string]string{EnvAPIURL: "http://"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(lookup(tt.env))
			assert.Error(t, err)
		})
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv(EnvDB, filepath.Join(dir, "explicit", "db.sqlite"))
	p, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "explicit", "db.sqlite"), p)
	_, err = os.Stat(filepath.Join(dir, "explicit"))
	assert.NoError(t, err)

	t.Setenv(EnvDB, "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "carmarket", "carmarket.db"), p)
}

func TestResolveDBPathPrefersConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvDB, "")
	t.Setenv("XDG_DATA_HOME", dir)

	cfg, err := FromEnv(lookup(map[string]string{EnvDB: filepath.Join(dir, "cfg", "log.db")}))
	require.NoError(t, err)
	p, err := cfg.ResolveDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cfg", "log.db"), p)
	_, err = os.Stat(filepath.Join(dir, "cfg"))
	assert.NoError(t, err)

	cfg.DBPath = ""
	p, err = cfg.ResolveDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "carmarket", "carmarket.db"), p)
}
