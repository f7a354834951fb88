// Package config loads runtime configuration for the mdash CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. MDASH_* variables, from the process environment or a .env file in the
//     working directory (the environment wins).
//  3. Optional JSON file selected via flags: -c or -config.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   backend base URL
//	-d string   local SQLite database path
//	-t int      request timeout (seconds)
//	-l string   log level
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the timeout, so it can be either a
// string like "10s" or integer nanoseconds:
//
//	{
//	  "base_url": "https://mktmem-backend.onrender.com",
//	  "database_path": "mdash.db",
//	  "request_timeout": "10s",
//	  "log_level": "debug",
//	  "log_format": "zerolog"
//	}
package config
