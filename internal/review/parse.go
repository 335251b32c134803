package review

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lona-agency/trading-cli/internal/payload"
	"github.com/lona-agency/trading-cli/internal/platform"
)

// Profiles the platform accepts. "standard" is the default preset.
const (
	ProfileStandard = "standard"
	ProfileStrict   = "strict"
	ProfileAudit    = "audit"
)

var validProfiles = map[string]bool{
	ProfileStandard: true,
	ProfileStrict:   true,
	ProfileAudit:    true,
}

var validRenderFormats = map[string]bool{
	platform.RenderFormatHTML: true,
	platform.RenderFormatPDF:  true,
}

var validRunStatuses = map[string]bool{
	platform.RunStatusQueued:    true,
	platform.RunStatusRunning:   true,
	platform.RunStatusCompleted: true,
	platform.RunStatusFailed:    true,
}

var validRunDecisions = map[string]bool{
	platform.DecisionPending:         true,
	platform.DecisionPass:            true,
	platform.DecisionConditionalPass: true,
	platform.DecisionFail:            true,
}

// ParseProfile normalizes a --profile value, defaulting to standard.
func ParseProfile(value string) (string, error) {
	profile := strings.ToLower(payload.NonEmpty(value))
	if profile == "" {
		return ProfileStandard, nil
	}
	if !validProfiles[profile] {
		return "", &platform.ValidationError{
			Field:   "--profile",
			Message: fmt.Sprintf("Unsupported --profile value '%s'. Expected one of: standard, strict, audit.", value),
		}
	}
	return profile, nil
}

// ParseRenderFormats validates a comma-separated --render value and
// de-duplicates it preserving caller order.
func ParseRenderFormats(value string) ([]string, error) {
	formats := payload.SplitCSV(value)
	if len(formats) == 0 {
		return nil, nil
	}

	seen := make(map[string]bool, len(formats))
	var out []string
	for _, format := range formats {
		if !validRenderFormats[format] {
			return nil, &platform.ValidationError{
				Field:   "--render",
				Message: fmt.Sprintf("Unsupported render format '%s'. Expected one of: html, pdf.", format),
			}
		}
		if seen[format] {
			continue
		}
		seen[format] = true
		out = append(out, format)
	}
	return out, nil
}

// ParseRenderFormat validates a single-valued format option. optionName
// appears in the error message ("--render-format" or "--format").
func ParseRenderFormat(value, optionName string) (string, error) {
	formats, err := ParseRenderFormats(value)
	if err != nil {
		return "", err
	}
	if len(formats) == 0 {
		return "", nil
	}
	if len(formats) > 1 {
		return "", &platform.ValidationError{
			Field:   optionName,
			Message: fmt.Sprintf("%s accepts a single value (html or pdf).", optionName),
		}
	}
	return formats[0], nil
}

// ParseStatusFilter validates an optional --status filter.
func ParseStatusFilter(value string) (string, error) {
	status := strings.ToLower(payload.NonEmpty(value))
	if status == "" {
		return "", nil
	}
	if !validRunStatuses[status] {
		return "", &platform.ValidationError{
			Field:   "--status",
			Message: fmt.Sprintf("Unsupported --status value '%s'. Expected one of: queued, running, completed, failed.", value),
		}
	}
	return status, nil
}

// ParseFinalDecisionFilter validates an optional --final-decision filter.
func ParseFinalDecisionFilter(value string) (string, error) {
	decision := strings.ToLower(payload.NonEmpty(value))
	if decision == "" {
		return "", nil
	}
	if !validRunDecisions[decision] {
		return "", &platform.ValidationError{
			Field:   "--final-decision",
			Message: fmt.Sprintf("Unsupported --final-decision value '%s'. Expected one of: pending, pass, conditional_pass, fail.", value),
		}
	}
	return decision, nil
}

// ParseLimit validates an optional --limit page size. Zero means unset.
func ParseLimit(value string) (int, error) {
	raw := payload.NonEmpty(value)
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > 100 {
		return 0, &platform.ValidationError{
			Field:   "--limit",
			Message: "--limit must be an integer between 1 and 100.",
		}
	}
	return limit, nil
}
