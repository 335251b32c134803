package platform

import (
	"encoding/json"
	"time"
)

// Render formats accepted by the platform.
const (
	RenderFormatHTML = "html"
	RenderFormatPDF  = "pdf"
)

// RenderStatusCompleted is the terminal render status; anything else
// counts as pending.
const RenderStatusCompleted = "completed"

// Run lifecycle statuses.
const (
	RunStatusQueued    = "queued"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Final decisions.
const (
	DecisionPending         = "pending"
	DecisionPass            = "pass"
	DecisionConditionalPass = "conditional_pass"
	DecisionFail            = "fail"
)

// ValidationPolicy is the gate block attached to a run request. In the
// discrete-flag path all gates are fixed safety defaults; only a trusted
// file payload may carry different values.
type ValidationPolicy struct {
	Profile                         string `json:"profile"`
	BlockMergeOnFail                bool   `json:"blockMergeOnFail"`
	BlockReleaseOnFail              bool   `json:"blockReleaseOnFail"`
	BlockMergeOnAgentFail           bool   `json:"blockMergeOnAgentFail"`
	BlockReleaseOnAgentFail         bool   `json:"blockReleaseOnAgentFail"`
	RequireTraderReview             bool   `json:"requireTraderReview"`
	HardFailOnMissingIndicators     bool   `json:"hardFailOnMissingIndicators"`
	FailClosedOnEvidenceUnavailable bool   `json:"failClosedOnEvidenceUnavailable"`
}

// DefaultPolicy returns the non-negotiable gate defaults for a profile.
func DefaultPolicy(profile string) ValidationPolicy {
	return ValidationPolicy{
		Profile:                         profile,
		BlockMergeOnFail:                true,
		BlockReleaseOnFail:              true,
		BlockMergeOnAgentFail:           true,
		BlockReleaseOnAgentFail:         false,
		RequireTraderReview:             true,
		HardFailOnMissingIndicators:     true,
		FailClosedOnEvidenceUnavailable: true,
	}
}

// CreateValidationRunRequest is the POST /v2/validation-runs payload.
type CreateValidationRunRequest struct {
	StrategyID          string           `json:"strategyId"`
	ProviderRefID       string           `json:"providerRefId,omitempty"`
	Prompt              string           `json:"prompt,omitempty"`
	RequestedIndicators []string         `json:"requestedIndicators"`
	DatasetIDs          []string         `json:"datasetIds"`
	BacktestReportRef   string           `json:"backtestReportRef"`
	Policy              ValidationPolicy `json:"policy"`
}

// ValidationRun is the remote-owned run record.
type ValidationRun struct {
	ID            string    `json:"id"`
	Status        string    `json:"status"`
	Profile       string    `json:"profile"`
	FinalDecision string    `json:"finalDecision"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CreateValidationRunResponse wraps a created run.
type CreateValidationRunResponse struct {
	RequestID string        `json:"requestId"`
	Run       ValidationRun `json:"run"`
}

// Render is an asynchronous render job for a run. Artifact fields are
// present only once the render completes.
type Render struct {
	RunID       string     `json:"runId"`
	Format      string     `json:"format"`
	Status      string     `json:"status"`
	ArtifactID  string     `json:"artifactId,omitempty"`
	DownloadURL string     `json:"downloadUrl,omitempty"`
	Checksum    string     `json:"checksum,omitempty"`
	RequestedAt time.Time  `json:"requestedAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

// RenderResponse wraps a created or fetched render.
type RenderResponse struct {
	RequestID string `json:"requestId"`
	Render    Render `json:"render"`
}

// TraderReview is the human-review portion of a review artifact.
type TraderReview struct {
	Status string `json:"status"`
}

// ReviewRunArtifact is the full review artifact for a run.
type ReviewRunArtifact struct {
	SchemaVersion int               `json:"schemaVersion"`
	Run           ValidationRun     `json:"run"`
	Artifact      ArtifactBody      `json:"artifact"`
	Comments      []json.RawMessage `json:"comments"`
	Decision      json.RawMessage   `json:"decision"`
	Renders       []Render          `json:"renders"`
}

// ArtifactBody holds the nested artifact payload pieces the CLI reads.
type ArtifactBody struct {
	TraderReview TraderReview `json:"traderReview"`
}

// PendingDecision reports whether no final decision has been recorded.
func (a *ReviewRunArtifact) PendingDecision() bool {
	return len(a.Decision) == 0 || string(a.Decision) == "null"
}

// ReviewRunDetailResponse is the GET run detail envelope. Raw preserves
// the artifact exactly as received for --raw passthrough.
type ReviewRunDetailResponse struct {
	RequestID string
	Artifact  ReviewRunArtifact
	Raw       json.RawMessage
}

// ReviewRunSummary is one item of the run list.
type ReviewRunSummary struct {
	ID                 string    `json:"id"`
	Status             string    `json:"status"`
	Profile            string    `json:"profile"`
	FinalDecision      string    `json:"finalDecision"`
	TraderReviewStatus string    `json:"traderReviewStatus"`
	CommentCount       int       `json:"commentCount"`
	PendingDecision    bool      `json:"pendingDecision"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// ListReviewRunsResponse is the filtered, cursor-paginated run list.
type ListReviewRunsResponse struct {
	RequestID  string             `json:"requestId"`
	Items      []ReviewRunSummary `json:"items"`
	NextCursor *string            `json:"nextCursor"`
}

// ListReviewRunsParams are the optional list filters. Zero values mean
// "not set" and are omitted from the query string.
type ListReviewRunsParams struct {
	Status        string
	FinalDecision string
	Cursor        string
	Limit         int
}

// InviteRegistrationRequest registers a bot with an invite code.
type InviteRegistrationRequest struct {
	InviteCode string         `json:"inviteCode"`
	BotName    string         `json:"botName"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// PartnerBootstrapRequest registers a bot through partner credentials.
type PartnerBootstrapRequest struct {
	PartnerKey    string         `json:"partnerKey"`
	PartnerSecret string         `json:"partnerSecret"`
	OwnerEmail    string         `json:"ownerEmail"`
	BotName       string         `json:"botName"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// Bot is the remote-owned bot identity.
type Bot struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Status         string     `json:"status"`
	OwnerEmail     string     `json:"ownerEmail,omitempty"`
	TrialExpiresAt *time.Time `json:"trialExpiresAt"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// BotRegistration records how a bot was registered.
type BotRegistration struct {
	ID        string    `json:"id"`
	BotID     string    `json:"botId"`
	Method    string    `json:"method"`
	CreatedAt time.Time `json:"createdAt"`
}

// BotKeyMetadata describes an API key without its secret value.
type BotKeyMetadata struct {
	ID         string     `json:"id"`
	BotID      string     `json:"botId"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastUsedAt *time.Time `json:"lastUsedAt"`
	RevokedAt  *time.Time `json:"revokedAt"`
}

// IssuedKey pairs key metadata with the raw secret. The raw value is
// returned by the platform exactly once, at issuance or rotation.
type IssuedKey struct {
	Key    BotKeyMetadata `json:"key"`
	RawKey string         `json:"rawKey"`
}

// RegistrationResponse is the result of either registration path.
type RegistrationResponse struct {
	RequestID    string          `json:"requestId"`
	Bot          Bot             `json:"bot"`
	Registration BotRegistration `json:"registration"`
	IssuedKey    IssuedKey       `json:"issuedKey"`
}

// RotateKeyResponse carries the replacement key.
type RotateKeyResponse struct {
	RequestID string    `json:"requestId"`
	BotID     string    `json:"botId"`
	IssuedKey IssuedKey `json:"issuedKey"`
}

// RevokeKeyResponse confirms a revocation. It never carries a raw key.
type RevokeKeyResponse struct {
	RequestID string         `json:"requestId"`
	BotID     string         `json:"botId"`
	Key       BotKeyMetadata `json:"key"`
}

type keyReasonRequest struct {
	Reason string `json:"reason"`
}

type keyRevocationRequest struct {
	KeyID  string `json:"keyId"`
	Reason string `json:"reason,omitempty"`
}

type createRenderRequest struct {
	Format string `json:"format"`
}
