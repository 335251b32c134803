// Package platform is the typed HTTP client for the trade-nexus platform
// API. It is the only piece of the CLI that performs network I/O: one
// request at a time, each bounded by a fixed timeout, no retries (retry
// policy belongs to the operator, keyed by the idempotency headers).
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/lona-agency/trading-cli/internal/debug"
	"github.com/lona-agency/trading-cli/internal/identity"
	"github.com/lona-agency/trading-cli/internal/telemetry"
)

// DefaultTimeout bounds every individual API call.
const DefaultTimeout = 15 * time.Second

// Client provides access to the platform API.
type Client struct {
	BaseURL     string
	BearerToken string
	APIKey      string
	HTTPClient  *http.Client

	requestCounter metric.Int64Counter
}

// NewClient creates a platform API client. The base URL must already have
// passed the host guard.
func NewClient(baseURL, bearerToken, apiKey string) *Client {
	counter, _ := telemetry.Meter().Int64Counter("platform.api.requests",
		metric.WithDescription("Platform API requests issued by the CLI"))
	return &Client{
		BaseURL:     strings.TrimSuffix(baseURL, "/"),
		BearerToken: bearerToken,
		APIKey:      apiKey,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		requestCounter: counter,
	}
}

// HasCredentials reports whether a bearer token or API key is configured.
func (c *Client) HasCredentials() bool {
	return c.BearerToken != "" || c.APIKey != ""
}

// do executes one request. requestID is always sent as X-Request-Id;
// idempotencyKey, when non-empty, as Idempotency-Key. A non-nil out
// receives the decoded JSON body.
func (c *Client) do(ctx context.Context, method, path, requestID, idempotencyKey string, body, out any) error {
	tracer := telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "platform.request")
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", path),
	)
	if c.requestCounter != nil {
		c.requestCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		))
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "trading-cli/1.0")
	req.Header.Set("X-Request-Id", requestID)
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	} else if c.APIKey != "" {
		req.Header.Set("X-Api-Key", c.APIKey)
	}

	debug.Logf("%s %s request-id=%s", method, path, requestID)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, "transport failure")
		return &TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		span.SetStatus(codes.Error, "transport failure")
		return &TransportError{Err: err}
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		span.SetStatus(codes.Error, "api error")
		return decodeAPIError(resp.StatusCode, respBody)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &ParseError{
			Message: fmt.Sprintf("Platform API response was not valid JSON (%s %s).", method, path),
			Err:     err,
		}
	}
	return nil
}

// decodeAPIError maps a non-2xx response to an APIError, tolerating
// bodies that are empty or not the structured error shape.
func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{
		HTTPStatus: status,
		Message:    fmt.Sprintf("Platform API request failed with HTTP %d.", status),
	}

	var parsed struct {
		RequestID string `json:"requestId"`
		Error     struct {
			Code    string          `json:"code"`
			Message string          `json:"message"`
			Details json.RawMessage `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return apiErr
	}

	if msg := strings.TrimSpace(parsed.Error.Message); msg != "" {
		apiErr.Message = msg
	}
	apiErr.Code = strings.TrimSpace(parsed.Error.Code)
	apiErr.RequestID = strings.TrimSpace(parsed.RequestID)
	if len(parsed.Error.Details) > 0 && string(parsed.Error.Details) != "null" {
		apiErr.Details = parsed.Error.Details
	}
	return apiErr
}

// CreateValidationRun creates a validation run.
func (c *Client) CreateValidationRun(ctx context.Context, id identity.Identity, req *CreateValidationRunRequest) (*CreateValidationRunResponse, error) {
	var out CreateValidationRunResponse
	err := c.do(ctx, http.MethodPost, "/v2/validation-runs", id.RequestID, id.IdempotencyKey, req, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateReviewRender requests a render of a run's review artifact.
func (c *Client) CreateReviewRender(ctx context.Context, runID string, id identity.Identity, format string) (*RenderResponse, error) {
	path := fmt.Sprintf("/v2/validation-review/runs/%s/renders", url.PathEscape(runID))
	var out RenderResponse
	err := c.do(ctx, http.MethodPost, path, id.RequestID, id.IdempotencyKey, createRenderRequest{Format: format}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetReviewRun fetches a run's full review artifact, preserving the raw
// artifact payload for passthrough.
func (c *Client) GetReviewRun(ctx context.Context, runID, requestID string) (*ReviewRunDetailResponse, error) {
	path := fmt.Sprintf("/v2/validation-review/runs/%s", url.PathEscape(runID))

	var envelope struct {
		RequestID string          `json:"requestId"`
		Artifact  json.RawMessage `json:"artifact"`
	}
	if err := c.do(ctx, http.MethodGet, path, requestID, "", nil, &envelope); err != nil {
		return nil, err
	}

	out := &ReviewRunDetailResponse{
		RequestID: envelope.RequestID,
		Raw:       envelope.Artifact,
	}
	if err := json.Unmarshal(envelope.Artifact, &out.Artifact); err != nil {
		return nil, &ParseError{
			Message: fmt.Sprintf("Platform API response was not valid JSON (GET %s).", path),
			Err:     err,
		}
	}
	return out, nil
}

// GetReviewRender fetches the status of one named render.
func (c *Client) GetReviewRender(ctx context.Context, runID, format, requestID string) (*RenderResponse, error) {
	path := fmt.Sprintf("/v2/validation-review/runs/%s/renders/%s", url.PathEscape(runID), url.PathEscape(format))
	var out RenderResponse
	if err := c.do(ctx, http.MethodGet, path, requestID, "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListReviewRuns lists runs with optional filters and cursor pagination.
func (c *Client) ListReviewRuns(ctx context.Context, requestID string, params ListReviewRunsParams) (*ListReviewRunsResponse, error) {
	query := url.Values{}
	if params.Status != "" {
		query.Set("status", params.Status)
	}
	if params.FinalDecision != "" {
		query.Set("finalDecision", params.FinalDecision)
	}
	if params.Cursor != "" {
		query.Set("cursor", params.Cursor)
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}

	path := "/v2/validation-runs"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var out ListReviewRunsResponse
	if err := c.do(ctx, http.MethodGet, path, requestID, "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterInvite registers a bot using an invite code. No credentials are
// required: registration is how a bot obtains its first key.
func (c *Client) RegisterInvite(ctx context.Context, id identity.Identity, req *InviteRegistrationRequest) (*RegistrationResponse, error) {
	var out RegistrationResponse
	err := c.do(ctx, http.MethodPost, "/v2/validation-bots/registrations/invite-code", id.RequestID, id.IdempotencyKey, req, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterPartner registers a bot through the partner bootstrap path.
func (c *Client) RegisterPartner(ctx context.Context, id identity.Identity, req *PartnerBootstrapRequest) (*RegistrationResponse, error) {
	var out RegistrationResponse
	err := c.do(ctx, http.MethodPost, "/v2/validation-bots/registrations/partner-bootstrap", id.RequestID, id.IdempotencyKey, req, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RotateKey issues a replacement key for a bot.
func (c *Client) RotateKey(ctx context.Context, botID string, id identity.Identity, reason string) (*RotateKeyResponse, error) {
	path := fmt.Sprintf("/v2/validation-bots/%s/keys/rotate", url.PathEscape(botID))
	var body any
	if reason != "" {
		body = keyReasonRequest{Reason: reason}
	}
	var out RotateKeyResponse
	if err := c.do(ctx, http.MethodPost, path, id.RequestID, id.IdempotencyKey, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RevokeKey revokes one of a bot's keys.
func (c *Client) RevokeKey(ctx context.Context, botID, keyID string, id identity.Identity, reason string) (*RevokeKeyResponse, error) {
	path := fmt.Sprintf("/v2/validation-bots/%s/keys/revoke", url.PathEscape(botID))
	body := keyRevocationRequest{KeyID: keyID, Reason: reason}
	var out RevokeKeyResponse
	if err := c.do(ctx, http.MethodPost, path, id.RequestID, id.IdempotencyKey, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
