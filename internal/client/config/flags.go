package config

import (
	"flag"
	"io"
	"time"

	"github.com/marketmemphis/mdash/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   backend base URL
//	-d string   path of the local SQLite database
//	-t int      request timeout in seconds
//	-l string   log level
//
// Only these flags are picked out of args (flagx.FilterArgs), so -c/-config
// and anything else are left to their own readers.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-t", "-l"})

	fs := flag.NewFlagSet("mdash", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.BaseURL, "a", cfg.BaseURL, "backend base URL")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}
