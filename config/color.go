package config

import "os"

// noColor follows https://no-color.org convention.
func noColor() bool {
	v, ok := os.LookupEnv("NO_COLOR")
	return ok && v != ""
}
