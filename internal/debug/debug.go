// Package debug provides env-gated diagnostic logging on stderr.
// Stdout and stderr carry JSON envelopes, so diagnostics are off unless
// TRADING_CLI_DEBUG is set and always print on their own stderr lines.
package debug

import (
	"fmt"
	"os"
)

var enabled = os.Getenv("TRADING_CLI_DEBUG") != ""

// Enabled reports whether debug logging is active.
func Enabled() bool {
	return enabled
}

// Logf writes a formatted line to stderr when debug logging is enabled.
func Logf(format string, args ...interface{}) {
	if enabled {
		fmt.Fprintf(os.Stderr, "[trading-cli] "+format+"\n", args...)
	}
}
