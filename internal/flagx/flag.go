// Package flagx contains helpers for cooperative flag parsing: several
// config loaders each parse only the flags they own, so arguments meant
// for one loader must not trip another's flag.FlagSet.
package flagx

import "strings"

// JSONConfigFlagNames are the flags every component accepts for pointing
// at a JSON config file.
var JSONConfigFlagNames = []string{"-c", "-config", "--config"}

// FilterArgs returns the subset of args containing only the allowed flags
// and their values.
//
// Supported formats:
//  1. Flag and value as separate arguments:  -c conf.json
//  2. Flag and value combined with '=':      --config=conf.json
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// "--flag=value" or "-f=value"
		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		// flag as a separate argument, value may follow
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

// JSONConfigPath extracts the JSON config file path from args, if any of
// the JSONConfigFlagNames is present. Returns "" when no path was given.
func JSONConfigPath(args []string) string {
	filtered := FilterArgs(args, JSONConfigFlagNames)
	for i := 0; i < len(filtered); i++ {
		arg := filtered[i]
		if strings.Contains(arg, "=") {
			return strings.SplitN(arg, "=", 2)[1]
		}
		if i+1 < len(filtered) {
			return filtered[i+1]
		}
	}
	return ""
}
