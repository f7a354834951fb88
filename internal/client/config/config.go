package config

import (
	"fmt"
	"os"
	"time"
)

const DefaultBaseURL = "https://mktmem-backend.onrender.com"

// Config holds runtime settings for the mdash CLI.
//
// Fields:
//   - BaseURL: scheme and host of the marketing backend REST API.
//   - DatabasePath: SQLite file holding the token store.
//   - RequestTimeout: upper bound for a single backend request.
//   - LogLevel, LogFormat: see logging.New.
type Config struct {
	BaseURL        string
	DatabasePath   string
	RequestTimeout time.Duration
	LogLevel       string
	LogFormat      string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = DefaultBaseURL
	c.DatabasePath = "mdash.db"
	c.RequestTimeout = 15 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// Load builds a Config from defaults, the .env file and environment, an
// optional JSON file and finally the command-line args (without the program
// name). Later sources take precedence over earlier ones.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg, ".env", os.LookupEnv); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := parseJson(cfg, args); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	return cfg, nil
}

// LoadConfig is Load over os.Args.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}
