// Package payload builds request payloads from either a trusted JSON file
// or discrete CLI flags. The same pattern backs review-run trigger and
// both registration paths: a file input bypasses field-level validation,
// the flag path fails on the first missing required field.
package payload

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/lona-agency/trading-cli/internal/platform"
)

// Required names one discrete flag that must be non-blank when no input
// file is given.
type Required struct {
	Flag  string
	Value string
}

// Build returns the payload parsed from inputPath when it is non-blank
// (trusted, no field validation), otherwise checks every required flag in
// order and calls assemble. label names the payload in parse errors.
func Build[T any](inputPath, label string, required []Required, assemble func() (*T, error)) (*T, error) {
	if path := strings.TrimSpace(inputPath); path != "" {
		return File[T](path, label)
	}

	for _, field := range required {
		if strings.TrimSpace(field.Value) == "" {
			return nil, &platform.ValidationError{
				Field:   field.Flag,
				Message: fmt.Sprintf("%s is required when --input is not provided.", field.Flag),
			}
		}
	}

	return assemble()
}

// File parses a JSON file into T. The content is trusted as
// pre-validated; only JSON syntax failures are reported.
func File[T any](path, label string) (*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &platform.ParseError{
			Message: fmt.Sprintf("Unable to parse %s at %s: %v", label, path, err),
			Err:     err,
		}
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &platform.ParseError{
			Message: fmt.Sprintf("Unable to parse %s at %s: %v", label, path, err),
			Err:     err,
		}
	}
	return &out, nil
}

// Metadata resolves the optional registration metadata from an inline
// JSON object or a JSON file. Supplying both is an error; supplying
// neither returns nil.
func Metadata(inlineJSON, filePath string) (map[string]any, error) {
	inline := strings.TrimSpace(inlineJSON)
	path := strings.TrimSpace(filePath)

	if inline != "" && path != "" {
		return nil, &platform.ValidationError{
			Message: "Specify only one of --metadata-json or --metadata-file.",
		}
	}

	if inline != "" {
		var parsed any
		if err := json.Unmarshal([]byte(inline), &parsed); err != nil {
			return nil, &platform.ParseError{
				Message: fmt.Sprintf("Unable to parse --metadata-json as JSON: %v", err),
				Err:     err,
			}
		}
		object, ok := parsed.(map[string]any)
		if !ok {
			return nil, &platform.ValidationError{
				Field:   "--metadata-json",
				Message: "--metadata-json must be a JSON object.",
			}
		}
		return object, nil
	}

	if path != "" {
		object, err := File[map[string]any](path, "--metadata-file")
		if err != nil {
			return nil, err
		}
		return *object, nil
	}

	return nil, nil
}

// SplitCSV splits a comma-separated flag value into trimmed, non-empty
// items.
func SplitCSV(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// NonEmpty returns the trimmed value, or "" when blank.
func NonEmpty(value string) string {
	return strings.TrimSpace(value)
}
