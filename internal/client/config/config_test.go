package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	var c Config
	c.LoadDefaults()
	return &c
}

func noEnv(string) (string, bool) { return "", false }

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, DefaultBaseURL, c.BaseURL)
	assert.Equal(t, "mdash.db", c.DatabasePath)
	assert.Equal(t, 15*time.Second, c.RequestTimeout)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "text", c.LogFormat)
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected *Config
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "http://localhost:8000", "-d", "/tmp/x.db", "-t", "3", "-l", "debug"},
			expected: &Config{BaseURL: "http://localhost:8000", DatabasePath: "/tmp/x.db",
				RequestTimeout: 3 * time.Second, LogLevel: "debug", LogFormat: "text"},
		},
		{
			name:     "unrelated flags ignored",
			args:     []string{"-c", "cfg.json", "-x", "-a=http://h"},
			expected: &Config{BaseURL: "http://h", DatabasePath: "mdash.db", RequestTimeout: 15 * time.Second, LogLevel: "info", LogFormat: "text"},
		},
		{name: "bad timeout", args: []string{"-t", "abc"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			err := parseFlags(cfg, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}

func TestParseFlags_TimeoutKeptWhenAbsent(t *testing.T) {
	cfg := defaults()
	cfg.RequestTimeout = 1500 * time.Millisecond

	require.NoError(t, parseFlags(cfg, nil))
	assert.Equal(t, 1500*time.Millisecond, cfg.RequestTimeout)
}

func TestParseJson(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "cfg.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"base_url":"http://json:1","request_timeout":"10s","log_format":"zerolog"}`), 0o600))
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

	t.Run("loads from -config", func(t *testing.T) {
		cfg := defaults()
		require.NoError(t, parseJson(cfg, []string{"-config", good}))

		want := defaults()
		want.BaseURL = "http://json:1"
		want.RequestTimeout = 10 * time.Second
		want.LogFormat = "zerolog"
		assert.Empty(t, cmp.Diff(want, cfg))
	})

	t.Run("no flag, no changes", func(t *testing.T) {
		cfg := defaults()
		require.NoError(t, parseJson(cfg, []string{"-a", "x"}))
		assert.Empty(t, cmp.Diff(defaults(), cfg))
	})

	t.Run("invalid json", func(t *testing.T) {
		require.Error(t, parseJson(defaults(), []string{"-c", bad}))
	})

	t.Run("missing file", func(t *testing.T) {
		require.Error(t, parseJson(defaults(), []string{"-c", filepath.Join(dir, "nope.json")}))
	})
}

func TestParseEnv(t *testing.T) {
	dir := t.TempDir()
	dotenv := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("MDASH_BASE_URL=http://dotenv\nMDASH_LOG_LEVEL=warn\nMDASH_REQUEST_TIMEOUT=2s\n"), 0o600))

	env := map[string]string{EnvLogLevel: "debug", EnvDatabasePath: "/var/mdash.db"}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := defaults()
	require.NoError(t, parseEnv(cfg, dotenv, lookup))

	assert.Equal(t, "http://dotenv", cfg.BaseURL)
	assert.Equal(t, "debug", cfg.LogLevel, "process environment wins over the file")
	assert.Equal(t, "/var/mdash.db", cfg.DatabasePath)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
}

func TestParseEnv_MissingFileAndBadTimeout(t *testing.T) {
	cfg := defaults()
	require.NoError(t, parseEnv(cfg, filepath.Join(t.TempDir(), ".env"), noEnv))
	assert.Empty(t, cmp.Diff(defaults(), cfg))

	bad := func(k string) (string, bool) {
		if k == EnvRequestTimeout {
			return "soon", true
		}
		return "", false
	}
	require.Error(t, parseEnv(defaults(), filepath.Join(t.TempDir(), ".env"), bad))
}

func TestLoad_Precedence(t *testing.T) {
	for _, k := range []string{EnvBaseURL, EnvDatabasePath, EnvRequestTimeout, EnvLogLevel, EnvLogFormat} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	t.Setenv(EnvLogFormat, "json")

	path := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"base_url":"http://json","log_level":"warn"}`), 0o600))

	cfg, err := Load([]string{"-c", path, "-a", "http://flag"})
	require.NoError(t, err)

	assert.Equal(t, "http://flag", cfg.BaseURL)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "mdash.db", cfg.DatabasePath)
}
