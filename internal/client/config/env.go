package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by parseEnv.
const (
	EnvBaseURL        = "MDASH_BASE_URL"
	EnvDatabasePath   = "MDASH_DB_PATH"
	EnvRequestTimeout = "MDASH_REQUEST_TIMEOUT"
	EnvLogLevel       = "MDASH_LOG_LEVEL"
	EnvLogFormat      = "MDASH_LOG_FORMAT"
)

// parseEnv overlays cfg with MDASH_* variables. A variable set in the process
// environment wins over the same variable in the dotenv file; a missing
// dotenv file is not an error.
func parseEnv(cfg *Config, dotenvPath string, lookup func(string) (string, bool)) error {
	fileVars, err := godotenv.Read(dotenvPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		fileVars = map[string]string{}
	}

	get := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	}

	if v, ok := get(EnvBaseURL); ok {
		cfg.BaseURL = v
	}
	if v, ok := get(EnvDatabasePath); ok {
		cfg.DatabasePath = v
	}
	if v, ok := get(EnvRequestTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		cfg.RequestTimeout = d
	}
	if v, ok := get(EnvLogLevel); ok {
		cfg.LogLevel = v
	}
	if v, ok := get(EnvLogFormat); ok {
		cfg.LogFormat = v
	}
	return nil
}
