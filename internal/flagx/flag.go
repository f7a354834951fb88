// Package flagx contains helpers for parsing a subset of command-line flags,
// so several loaders (JSON file lookup, runtime flags) can each read their own
// flags from the same os.Args without tripping over the others.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// FilterArgs returns the arguments from args that belong to allowedFlags,
// together with their values.
//
// Both "-f value" and "-f=value" are recognised. A token following an allowed
// flag is taken as its value unless it starts with "-".
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// ConfigFileFlag extracts the JSON config path passed with -c or -config.
// Everything else in args is ignored. An empty string means no file was given.
func ConfigFileFlag(args []string) string {
	var config string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))

	return config
}
