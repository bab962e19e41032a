package state

import (
	"time"
)

// newLocalEnv creates a new LocalEnv instance with default values. Logger,
// configuration and report are set up after command line is parsed.
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start: time.Now(),
	}
}
