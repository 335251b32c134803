package review

import (
	"net/url"
	"strings"
)

// reviewWebPath is the stable review UI path; run ids are passed as a
// query parameter so the link survives UI routing changes.
const reviewWebPath = "/validation"

// WebLink is the review-web deep link attached to run envelopes.
type WebLink struct {
	RunID       string `json:"runId"`
	Path        string `json:"path"`
	URL         string `json:"url"`
	FallbackURL string `json:"fallbackUrl"`
}

// Link builds the deep link for a run against the configured web origin.
func Link(webBaseURL, runID string) WebLink {
	base := strings.TrimSuffix(webBaseURL, "/")
	path := reviewWebPath + "?runId=" + url.QueryEscape(runID)
	return WebLink{
		RunID:       runID,
		Path:        path,
		URL:         base + path,
		FallbackURL: base + reviewWebPath,
	}
}
