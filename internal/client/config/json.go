package config

import (
	"encoding/json"
	"os"

	"github.com/marketmemphis/mdash/internal/flagx"
	"github.com/marketmemphis/mdash/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify the timeout either as a
// string like "10s" or as integer nanoseconds. Empty fields leave the
// current value alone.
type JsonConfig struct {
	BaseURL        string          `json:"base_url"`
	DatabasePath   string          `json:"database_path"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	LogLevel       string          `json:"log_level"`
	LogFormat      string          `json:"log_format"`
}

// parseJson overlays cfg with the JSON file named by -c or -config in args.
// Without that flag nothing is loaded.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}

	if jc.BaseURL != "" {
		cfg.BaseURL = jc.BaseURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.LogFormat != "" {
		cfg.LogFormat = jc.LogFormat
	}
	return nil
}
