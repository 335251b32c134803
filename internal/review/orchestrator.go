// Package review orchestrates the validation-run workflows: trigger a
// run (with optional render fan-out), retrieve one run or a filtered
// list, and request ad-hoc renders. All remote calls are issued strictly
// in sequence; identity derivation is the only retry mechanism.
package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lona-agency/trading-cli/internal/identity"
	"github.com/lona-agency/trading-cli/internal/payload"
	"github.com/lona-agency/trading-cli/internal/platform"
)

const namespace = "review-run"

// errAuthRequired is raised before any network call when no credential
// is configured.
var errAuthRequired = errors.New("Authentication required: set PLATFORM_API_BEARER_TOKEN (preferred) or PLATFORM_API_KEY.")

// Orchestrator runs review workflows against a platform client.
type Orchestrator struct {
	client     *platform.Client
	webBaseURL string
}

// NewOrchestrator wires a review orchestrator. webBaseURL must be a
// validated review-web origin.
func NewOrchestrator(client *platform.Client, webBaseURL string) *Orchestrator {
	return &Orchestrator{client: client, webBaseURL: webBaseURL}
}

func (o *Orchestrator) requireAuth() error {
	if !o.client.HasCredentials() {
		return errAuthRequired
	}
	return nil
}

// TriggerInput carries the review-run trigger flags.
type TriggerInput struct {
	InputPath           string
	StrategyID          string
	ProviderRefID       string
	Prompt              string
	RequestedIndicators string
	DatasetIDs          string
	BacktestReportRef   string
	Profile             string
	RenderFormats       string
	RequestIDSeed       string
	IdempotencyKeySeed  string
}

// RenderOutcome is one render request's result within a trigger or
// ad-hoc render envelope.
type RenderOutcome struct {
	RequestID string `json:"requestId"`
	Render    Render `json:"render"`
	Pending   bool   `json:"pending"`
}

// TriggerResult is the success envelope for review-run trigger.
type TriggerResult struct {
	Status         string          `json:"status"`
	Command        string          `json:"command"`
	RequestID      string          `json:"requestId"`
	IdempotencyKey string          `json:"idempotencyKey"`
	RunID          string          `json:"runId"`
	Run            Run             `json:"run"`
	ReviewWeb      WebLink         `json:"reviewWeb"`
	Renders        []RenderOutcome `json:"renders"`
}

// buildCreateRunRequest assembles the run payload from a trusted file or
// discrete flags. The flag path applies the fixed policy defaults; only a
// file payload can carry different gates.
func buildCreateRunRequest(in TriggerInput) (*platform.CreateValidationRunRequest, error) {
	required := []payload.Required{
		{Flag: "--strategy-id", Value: in.StrategyID},
	}
	return payload.Build(in.InputPath, "review-run trigger payload", required, func() (*platform.CreateValidationRunRequest, error) {
		indicators := payload.SplitCSV(in.RequestedIndicators)
		if len(indicators) == 0 {
			return nil, &platform.ValidationError{
				Field:   "--requested-indicators",
				Message: "--requested-indicators must contain at least one comma-separated indicator.",
			}
		}

		datasetIDs := payload.SplitCSV(in.DatasetIDs)
		if len(datasetIDs) == 0 {
			return nil, &platform.ValidationError{
				Field:   "--dataset-ids",
				Message: "--dataset-ids must contain at least one comma-separated dataset id.",
			}
		}

		backtestRef := payload.NonEmpty(in.BacktestReportRef)
		if backtestRef == "" {
			return nil, &platform.ValidationError{
				Field:   "--backtest-report-ref",
				Message: "--backtest-report-ref is required when --input is not provided.",
			}
		}

		profile, err := ParseProfile(in.Profile)
		if err != nil {
			return nil, err
		}

		return &platform.CreateValidationRunRequest{
			StrategyID:          payload.NonEmpty(in.StrategyID),
			ProviderRefID:       payload.NonEmpty(in.ProviderRefID),
			Prompt:              payload.NonEmpty(in.Prompt),
			RequestedIndicators: indicators,
			DatasetIDs:          datasetIDs,
			BacktestReportRef:   backtestRef,
			Policy:              platform.DefaultPolicy(profile),
		}, nil
	})
}

// Trigger creates a run and then issues one render request per requested
// format, strictly in caller order, one call at a time. Each render step
// uses its own derived identity so a retry of one step can never land in
// another step's idempotency slot.
func (o *Orchestrator) Trigger(ctx context.Context, in TriggerInput) (*TriggerResult, error) {
	req, err := buildCreateRunRequest(in)
	if err != nil {
		return nil, err
	}
	formats, err := ParseRenderFormats(in.RenderFormats)
	if err != nil {
		return nil, err
	}
	if err := o.requireAuth(); err != nil {
		return nil, err
	}

	id := identity.New(namespace, in.RequestIDSeed, in.IdempotencyKeySeed)

	runResp, err := o.client.CreateValidationRun(ctx, id, req)
	if err != nil {
		return nil, err
	}

	renders := make([]RenderOutcome, 0, len(formats))
	for ordinal, format := range formats {
		step := id.Render(format, ordinal)
		renderResp, err := o.client.CreateReviewRender(ctx, runResp.Run.ID, step, format)
		if err != nil {
			return nil, err
		}
		renders = append(renders, RenderOutcome{
			RequestID: renderResp.RequestID,
			Render:    normalizeRender(renderResp.Render),
			Pending:   renderPending(renderResp.Render),
		})
	}

	return &TriggerResult{
		Status:         "ok",
		Command:        "review-run trigger",
		RequestID:      runResp.RequestID,
		IdempotencyKey: id.IdempotencyKey,
		RunID:          runResp.Run.ID,
		Run:            normalizeRun(runResp.Run),
		ReviewWeb:      Link(o.webBaseURL, runResp.Run.ID),
		Renders:        renders,
	}, nil
}

// RetrieveInput carries the review-run retrieve flags.
type RetrieveInput struct {
	RunID         string
	RenderFormat  string
	Raw           bool
	Status        string
	FinalDecision string
	Cursor        string
	Limit         string
	RequestIDSeed string
}

// DetailResult is the success envelope for a single-run retrieve.
type DetailResult struct {
	Status    string          `json:"status"`
	Command   string          `json:"command"`
	RequestID string          `json:"requestId"`
	RunID     string          `json:"runId"`
	Summary   ArtifactSummary `json:"summary"`
	ReviewWeb WebLink         `json:"reviewWeb"`
	Render    *RenderOutcome  `json:"render,omitempty"`
	Artifact  json.RawMessage `json:"artifact,omitempty"`
}

// RetrieveRun fetches one run's artifact and, when a format is named,
// that render's status.
func (o *Orchestrator) RetrieveRun(ctx context.Context, in RetrieveInput) (*DetailResult, error) {
	format, err := ParseRenderFormat(in.RenderFormat, "--render-format")
	if err != nil {
		return nil, err
	}
	if err := o.requireAuth(); err != nil {
		return nil, err
	}

	requestID := identity.RequestID(namespace, in.RequestIDSeed)
	detail, err := o.client.GetReviewRun(ctx, in.RunID, requestID)
	if err != nil {
		return nil, err
	}

	result := &DetailResult{
		Status:    "ok",
		Command:   "review-run retrieve",
		RequestID: detail.RequestID,
		RunID:     in.RunID,
		Summary:   summarizeArtifact(detail),
		ReviewWeb: Link(o.webBaseURL, in.RunID),
	}

	if format != "" {
		renderResp, err := o.client.GetReviewRender(ctx, in.RunID, format, fmt.Sprintf("%s-render-%s", requestID, format))
		if err != nil {
			return nil, err
		}
		result.Render = &RenderOutcome{
			RequestID: renderResp.RequestID,
			Render:    normalizeRender(renderResp.Render),
			Pending:   renderPending(renderResp.Render),
		}
	}

	if in.Raw {
		result.Artifact = detail.Raw
	}

	return result, nil
}

// ListFilters echoes the applied filters back in the list envelope;
// unset filters serialize as null.
type ListFilters struct {
	Status        *string `json:"status"`
	FinalDecision *string `json:"finalDecision"`
	Cursor        *string `json:"cursor"`
	Limit         *int    `json:"limit"`
}

// ListResult is the success envelope for a filtered run list.
type ListResult struct {
	Status     string      `json:"status"`
	Command    string      `json:"command"`
	RequestID  string      `json:"requestId"`
	Filters    ListFilters `json:"filters"`
	Items      []ListItem  `json:"items"`
	NextCursor *string     `json:"nextCursor"`
}

// ListRuns lists runs with optional filters and opaque cursor
// pagination; nextCursor passes through verbatim.
func (o *Orchestrator) ListRuns(ctx context.Context, in RetrieveInput) (*ListResult, error) {
	status, err := ParseStatusFilter(in.Status)
	if err != nil {
		return nil, err
	}
	decision, err := ParseFinalDecisionFilter(in.FinalDecision)
	if err != nil {
		return nil, err
	}
	limit, err := ParseLimit(in.Limit)
	if err != nil {
		return nil, err
	}
	cursor := payload.NonEmpty(in.Cursor)
	if err := o.requireAuth(); err != nil {
		return nil, err
	}

	requestID := identity.RequestID(namespace, in.RequestIDSeed)
	listResp, err := o.client.ListReviewRuns(ctx, requestID, platform.ListReviewRunsParams{
		Status:        status,
		FinalDecision: decision,
		Cursor:        cursor,
		Limit:         limit,
	})
	if err != nil {
		return nil, err
	}

	items := make([]ListItem, 0, len(listResp.Items))
	for _, item := range listResp.Items {
		items = append(items, summarizeListItem(item, o.webBaseURL))
	}

	return &ListResult{
		Status:     "ok",
		Command:    "review-run retrieve",
		RequestID:  listResp.RequestID,
		Filters:    listFilters(status, decision, cursor, limit),
		Items:      items,
		NextCursor: listResp.NextCursor,
	}, nil
}

func listFilters(status, decision, cursor string, limit int) ListFilters {
	filters := ListFilters{}
	if status != "" {
		filters.Status = &status
	}
	if decision != "" {
		filters.FinalDecision = &decision
	}
	if cursor != "" {
		filters.Cursor = &cursor
	}
	if limit > 0 {
		filters.Limit = &limit
	}
	return filters
}

// RenderInput carries the ad-hoc render flags.
type RenderInput struct {
	RunID              string
	Format             string
	RequestIDSeed      string
	IdempotencyKeySeed string
}

// RenderResult is the success envelope for review-run render.
type RenderResult struct {
	Status         string  `json:"status"`
	Command        string  `json:"command"`
	RequestID      string  `json:"requestId"`
	IdempotencyKey string  `json:"idempotencyKey"`
	RunID          string  `json:"runId"`
	Format         string  `json:"format"`
	ReviewWeb      WebLink `json:"reviewWeb"`
	Render         Render  `json:"render"`
	Pending        bool    `json:"pending"`
}

// RequestRender issues a single ad-hoc render for an existing run.
func (o *Orchestrator) RequestRender(ctx context.Context, in RenderInput) (*RenderResult, error) {
	runID := payload.NonEmpty(in.RunID)
	if runID == "" {
		return nil, &platform.ValidationError{Field: "--run-id", Message: "--run-id is required."}
	}

	format, err := ParseRenderFormat(in.Format, "--format")
	if err != nil {
		return nil, err
	}
	if format == "" {
		return nil, &platform.ValidationError{
			Field:   "--format",
			Message: "--format is required and must be one of: html, pdf.",
		}
	}
	if err := o.requireAuth(); err != nil {
		return nil, err
	}

	id := identity.New(namespace, in.RequestIDSeed, in.IdempotencyKeySeed)
	renderResp, err := o.client.CreateReviewRender(ctx, runID, id, format)
	if err != nil {
		return nil, err
	}

	return &RenderResult{
		Status:         "ok",
		Command:        "review-run render",
		RequestID:      renderResp.RequestID,
		IdempotencyKey: id.IdempotencyKey,
		RunID:          runID,
		Format:         format,
		ReviewWeb:      Link(o.webBaseURL, runID),
		Render:         normalizeRender(renderResp.Render),
		Pending:        renderPending(renderResp.Render),
	}, nil
}
