package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/lona-agency/trading-cli/internal/envelope"
)

// stdout and stderr are variables so command tests can capture output.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// outputJSON writes v as pretty-printed JSON to stdout.
func outputJSON(v interface{}) error {
	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}

// outputErrorEnvelope classifies err into the single error-envelope
// shape and writes it to stderr. Every failure path funnels through
// here exactly once.
func outputErrorEnvelope(err error) {
	encoder := json.NewEncoder(stderr)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(envelope.Classify(err))
}
