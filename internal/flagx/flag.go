// Package flagx lets several config loaders share os.Args without tripping
// over each other's flags.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs keeps only the flags listed in allowedFlags, together with
// their values. Both "-f value" and "-f=value" forms are understood; a token
// starting with "-" is never taken as a value.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]bool, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = true
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(arg, "-") {
			if allowed[name] {
				filtered = append(filtered, arg)
			}
			continue
		}

		if !allowed[arg] {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
			filtered = append(filtered, args[i])
		}
	}

	return filtered
}

// stringFlag parses only the given aliases out of os.Args and returns the last
// value seen, or "" when none of them is present.
func stringFlag(setName, usage string, names ...string) string {
	var value string

	args := FilterArgs(os.Args[1:], prefixed(names))
	fs := flag.NewFlagSet(setName, flag.ContinueOnError)
	for _, n := range names {
		fs.StringVar(&value, n, "", usage)
	}
	_ = fs.Parse(args)

	return value
}

func prefixed(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = "-" + n
	}
	return out
}

// JsonConfigFlags returns the JSON config path given with -c or -config.
func JsonConfigFlags() string {
	return stringFlag("json", "Path to config file", "c", "config")
}

// DotenvFlags returns the .env path given with -env-file. An empty result
// means the default ".env" in the working directory.
func DotenvFlags() string {
	return stringFlag("dotenv", "Path to .env file", "env-file")
}
