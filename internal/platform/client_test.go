package platform

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lona-agency/trading-cli/internal/identity"
)

func testIdentity() identity.Identity {
	return identity.Identity{RequestID: "req-test-1", IdempotencyKey: "idem-test-1"}
}

func TestCreateValidationRunHeaders(t *testing.T) {
	var got *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(r.Context())
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"requestId":"req-server-1","run":{"id":"run-1","status":"queued","profile":"standard","finalDecision":"pending","createdAt":"2025-08-01T10:00:00Z","updatedAt":"2025-08-01T10:00:00Z"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "bearer-token", "")
	resp, err := client.CreateValidationRun(context.Background(), testIdentity(), &CreateValidationRunRequest{
		StrategyID:          "strat-001",
		RequestedIndicators: []string{"ema"},
		DatasetIDs:          []string{"dataset-1"},
		BacktestReportRef:   "blob://x",
		Policy:              DefaultPolicy("standard"),
	})
	if err != nil {
		t.Fatalf("CreateValidationRun: %v", err)
	}

	if resp.Run.ID != "run-1" {
		t.Errorf("Run.ID = %q, want run-1", resp.Run.ID)
	}
	if got.URL.Path != "/v2/validation-runs" {
		t.Errorf("path = %q", got.URL.Path)
	}
	if h := got.Header.Get("X-Request-Id"); h != "req-test-1" {
		t.Errorf("X-Request-Id = %q", h)
	}
	if h := got.Header.Get("Idempotency-Key"); h != "idem-test-1" {
		t.Errorf("Idempotency-Key = %q", h)
	}
	if h := got.Header.Get("Authorization"); h != "Bearer bearer-token" {
		t.Errorf("Authorization = %q", h)
	}
	if h := got.Header.Get("Content-Type"); h != "application/json" {
		t.Errorf("Content-Type = %q", h)
	}
}

func TestBearerTokenWinsOverAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token" {
			t.Errorf("Authorization = %q, want bearer", r.Header.Get("Authorization"))
		}
		if r.Header.Get("X-Api-Key") != "" {
			t.Errorf("X-Api-Key should be absent when bearer is set")
		}
		w.Write([]byte(`{"requestId":"r","items":[],"nextCursor":null}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "token", "api-key")
	if _, err := client.ListReviewRuns(context.Background(), "req-1", ListReviewRunsParams{}); err != nil {
		t.Fatalf("ListReviewRuns: %v", err)
	}
}

func TestAPIKeyHeaderWhenNoBearer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "api-key" {
			t.Errorf("X-Api-Key = %q", r.Header.Get("X-Api-Key"))
		}
		w.Write([]byte(`{"requestId":"r","items":[],"nextCursor":null}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "api-key")
	if _, err := client.ListReviewRuns(context.Background(), "req-1", ListReviewRunsParams{}); err != nil {
		t.Fatalf("ListReviewRuns: %v", err)
	}
}

func TestListReviewRunsQueryParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("status") != "running" || q.Get("finalDecision") != "pending" ||
			q.Get("cursor") != "abc" || q.Get("limit") != "25" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"requestId":"r","items":[],"nextCursor":"next-1"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "t", "")
	resp, err := client.ListReviewRuns(context.Background(), "req-1", ListReviewRunsParams{
		Status:        "running",
		FinalDecision: "pending",
		Cursor:        "abc",
		Limit:         25,
	})
	if err != nil {
		t.Fatalf("ListReviewRuns: %v", err)
	}
	if resp.NextCursor == nil || *resp.NextCursor != "next-1" {
		t.Errorf("NextCursor = %v", resp.NextCursor)
	}
}

func TestStructuredAPIErrorDecoded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"requestId":"req-remote","error":{"code":"invalid_policy","message":"policy rejected","details":{"field":"policy"}}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "t", "")
	_, err := client.ListReviewRuns(context.Background(), "req-1", ListReviewRunsParams{})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %T, want *APIError", err)
	}
	if apiErr.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("HTTPStatus = %d", apiErr.HTTPStatus)
	}
	if apiErr.Message != "policy rejected" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Code != "invalid_policy" {
		t.Errorf("Code = %q", apiErr.Code)
	}
	if apiErr.RequestID != "req-remote" {
		t.Errorf("RequestID = %q", apiErr.RequestID)
	}
	var details map[string]string
	if err := json.Unmarshal(apiErr.Details, &details); err != nil || details["field"] != "policy" {
		t.Errorf("Details = %s", apiErr.Details)
	}
}

func TestUnparseableErrorBodyFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "t", "")
	_, err := client.ListReviewRuns(context.Background(), "req-1", ListReviewRunsParams{})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %T, want *APIError", err)
	}
	if apiErr.Message != "Platform API request failed with HTTP 502." {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Code != "" || apiErr.RequestID != "" {
		t.Errorf("fallback should not carry code/requestId: %+v", apiErr)
	}
}

func TestConnectionFailureIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	client := NewClient(server.URL, "t", "")
	_, err := client.ListReviewRuns(context.Background(), "req-1", ListReviewRunsParams{})

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("err = %T, want *TransportError", err)
	}
	if !strings.Contains(transportErr.Error(), "Platform API connection failed") {
		t.Errorf("Error() = %q", transportErr.Error())
	}
}

func TestInvalidSuccessBodyIsParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "t", "")
	_, err := client.ListReviewRuns(context.Background(), "req-1", ListReviewRunsParams{})

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("err = %T, want *ParseError", err)
	}
	if !strings.Contains(parseErr.Message, "was not valid JSON") {
		t.Errorf("Message = %q", parseErr.Message)
	}
}

func TestRevokeKeySendsKeyIDInBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/validation-bots/bot-1/keys/revoke" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["keyId"] != "key-1" || body["reason"] != "compromised" {
			t.Errorf("body = %v", body)
		}
		w.Write([]byte(`{"requestId":"r","botId":"bot-1","key":{"id":"key-1","botId":"bot-1","status":"revoked","createdAt":"2025-08-01T10:00:00Z","lastUsedAt":null,"revokedAt":"2025-08-02T10:00:00Z"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "t", "")
	resp, err := client.RevokeKey(context.Background(), "bot-1", "key-1", testIdentity(), "compromised")
	if err != nil {
		t.Fatalf("RevokeKey: %v", err)
	}
	if resp.Key.Status != "revoked" {
		t.Errorf("Key.Status = %q", resp.Key.Status)
	}
}

func TestGetReviewRunPreservesRawArtifact(t *testing.T) {
	raw := `{"schemaVersion":3,"run":{"id":"run-9","status":"completed","profile":"standard","finalDecision":"pass","createdAt":"2025-08-01T10:00:00Z","updatedAt":"2025-08-02T10:00:00Z"},"artifact":{"traderReview":{"status":"approved"},"internalScratch":"keep-me"},"comments":[{"id":"c1"}],"decision":{"outcome":"pass"},"renders":[]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"requestId":"req-detail","artifact":` + raw + `}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "t", "")
	resp, err := client.GetReviewRun(context.Background(), "run-9", "req-1")
	if err != nil {
		t.Fatalf("GetReviewRun: %v", err)
	}
	if resp.Artifact.Run.ID != "run-9" || resp.Artifact.SchemaVersion != 3 {
		t.Errorf("typed artifact = %+v", resp.Artifact)
	}
	if resp.Artifact.PendingDecision() {
		t.Error("PendingDecision() = true with a recorded decision")
	}
	// Raw passthrough keeps fields the summary contract drops.
	if !strings.Contains(string(resp.Raw), "internalScratch") {
		t.Error("Raw artifact lost unknown fields")
	}
}
