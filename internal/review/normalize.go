package review

import (
	"time"

	"github.com/lona-agency/trading-cli/internal/platform"
)

// Timestamps are normalized to RFC3339 UTC strings so every envelope
// carries one canonical temporal form regardless of server formatting.

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// Run is the normalized projection of a validation run.
type Run struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	Profile       string `json:"profile"`
	FinalDecision string `json:"finalDecision"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

func normalizeRun(run platform.ValidationRun) Run {
	return Run{
		ID:            run.ID,
		Status:        run.Status,
		Profile:       run.Profile,
		FinalDecision: run.FinalDecision,
		CreatedAt:     formatTime(run.CreatedAt),
		UpdatedAt:     formatTime(run.UpdatedAt),
	}
}

// Render is the normalized projection of a render job.
type Render struct {
	RunID       string  `json:"runId"`
	Format      string  `json:"format"`
	Status      string  `json:"status"`
	ArtifactID  string  `json:"artifactId,omitempty"`
	DownloadURL string  `json:"downloadUrl,omitempty"`
	Checksum    string  `json:"checksum,omitempty"`
	RequestedAt string  `json:"requestedAt"`
	UpdatedAt   string  `json:"updatedAt"`
	ExpiresAt   *string `json:"expiresAt"`
}

func normalizeRender(render platform.Render) Render {
	return Render{
		RunID:       render.RunID,
		Format:      render.Format,
		Status:      render.Status,
		ArtifactID:  render.ArtifactID,
		DownloadURL: render.DownloadURL,
		Checksum:    render.Checksum,
		RequestedAt: formatTime(render.RequestedAt),
		UpdatedAt:   formatTime(render.UpdatedAt),
		ExpiresAt:   formatTimePtr(render.ExpiresAt),
	}
}

// renderPending is the single predicate the orchestration computes from
// render state.
func renderPending(render platform.Render) bool {
	return render.Status != platform.RenderStatusCompleted
}

// ArtifactSummary flattens a review artifact to the fields callers
// actually need; internal-only artifact fields never leak through it.
type ArtifactSummary struct {
	RunID              string `json:"runId"`
	Status             string `json:"status"`
	Profile            string `json:"profile"`
	FinalDecision      string `json:"finalDecision"`
	TraderReviewStatus string `json:"traderReviewStatus"`
	CommentCount       int    `json:"commentCount"`
	PendingDecision    bool   `json:"pendingDecision"`
	CreatedAt          string `json:"createdAt"`
	UpdatedAt          string `json:"updatedAt"`
	SchemaVersion      int    `json:"schemaVersion"`
	RenderCount        int    `json:"renderCount"`
}

func summarizeArtifact(detail *platform.ReviewRunDetailResponse) ArtifactSummary {
	artifact := detail.Artifact
	return ArtifactSummary{
		RunID:              artifact.Run.ID,
		Status:             artifact.Run.Status,
		Profile:            artifact.Run.Profile,
		FinalDecision:      artifact.Run.FinalDecision,
		TraderReviewStatus: artifact.Artifact.TraderReview.Status,
		CommentCount:       len(artifact.Comments),
		PendingDecision:    artifact.PendingDecision(),
		CreatedAt:          formatTime(artifact.Run.CreatedAt),
		UpdatedAt:          formatTime(artifact.Run.UpdatedAt),
		SchemaVersion:      artifact.SchemaVersion,
		RenderCount:        len(artifact.Renders),
	}
}

// ListItem is one normalized run-list entry, decorated with its own
// review-web link.
type ListItem struct {
	ID                 string  `json:"id"`
	Status             string  `json:"status"`
	Profile            string  `json:"profile"`
	FinalDecision      string  `json:"finalDecision"`
	TraderReviewStatus string  `json:"traderReviewStatus"`
	CommentCount       int     `json:"commentCount"`
	PendingDecision    bool    `json:"pendingDecision"`
	CreatedAt          string  `json:"createdAt"`
	UpdatedAt          string  `json:"updatedAt"`
	ReviewWeb          WebLink `json:"reviewWeb"`
}

func summarizeListItem(item platform.ReviewRunSummary, webBaseURL string) ListItem {
	return ListItem{
		ID:                 item.ID,
		Status:             item.Status,
		Profile:            item.Profile,
		FinalDecision:      item.FinalDecision,
		TraderReviewStatus: item.TraderReviewStatus,
		CommentCount:       item.CommentCount,
		PendingDecision:    item.PendingDecision,
		CreatedAt:          formatTime(item.CreatedAt),
		UpdatedAt:          formatTime(item.UpdatedAt),
		ReviewWeb:          Link(webBaseURL, item.ID),
	}
}
