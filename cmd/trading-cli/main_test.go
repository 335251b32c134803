package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lona-agency/trading-cli/internal/envelope"
	"github.com/lona-agency/trading-cli/internal/platform"
)

// captureOutput swaps stdout/stderr for buffers for the duration of a test.
func captureOutput(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	origOut, origErr := stdout, stderr
	stdout, stderr = out, errOut
	t.Cleanup(func() { stdout, stderr = origOut, origErr })
	return out, errOut
}

func execute(t *testing.T, client *platform.Client, args ...string) error {
	t.Helper()
	root := newRootCmd(client, "https://trade-nexus.lona.agency", "http://localhost:3000")
	root.SetArgs(args)
	return root.Execute()
}

func TestBareInvocationPrintsReadiness(t *testing.T) {
	out, _ := captureOutput(t)
	client := platform.NewClient("http://localhost:3000", "", "")
	require.NoError(t, execute(t, client))

	var env readinessEnvelope
	require.NoError(t, json.Unmarshal(out.Bytes(), &env))
	assert.Equal(t, "ok", env.Status)
	assert.Equal(t, "trading-cli ready", env.Message)
	assert.Equal(t, "http://localhost:3000", env.Target)
	assert.Contains(t, env.Commands, "review-run trigger")
	assert.Contains(t, env.Commands, "key revoke")
}

func TestUnknownVerbFails(t *testing.T) {
	captureOutput(t)
	client := platform.NewClient("http://localhost:3000", "", "")
	err := execute(t, client, "frobnicate")
	require.Error(t, err)
	assert.Equal(t, "Unknown command 'frobnicate'. Use 'review-run', 'validation run', 'register', 'key', or 'bot'.", err.Error())

	env := envelope.Classify(err)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, err.Error(), env.Message)
}

func TestBareGroupPrintsUsage(t *testing.T) {
	out, _ := captureOutput(t)
	client := platform.NewClient("http://localhost:3000", "", "")
	require.NoError(t, execute(t, client, "review-run"))

	var env readinessEnvelope
	require.NoError(t, json.Unmarshal(out.Bytes(), &env))
	assert.Equal(t, "ok", env.Status)
	assert.Contains(t, env.Commands, "review-run trigger")
}

func TestUnknownGroupSubcommandFails(t *testing.T) {
	captureOutput(t)
	client := platform.NewClient("http://localhost:3000", "", "")

	err := execute(t, client, "review-run", "triger")
	require.Error(t, err)
	assert.Equal(t, "Unknown review-run subcommand 'triger'. Use one of: review-run trigger, review-run retrieve, review-run render.", err.Error())

	err = execute(t, client, "bot", "frobnicate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown bot subcommand 'frobnicate'")
}

func TestRetrieveBlankRunIDListsRuns(t *testing.T) {
	out, _ := captureOutput(t)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v2/validation-runs", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"requestId":"srv-list-1","items":[],"nextCursor":null}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := platform.NewClient(server.URL, "tok", "")
	require.NoError(t, execute(t, client, "review-run", "retrieve", "--run-id", " "))

	var result map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, "ok", result["status"])
	assert.Contains(t, result, "items")
	assert.NotContains(t, result, "summary")
}

func TestValidationRunAliasTriggers(t *testing.T) {
	out, _ := captureOutput(t)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/validation-runs", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"requestId":"srv-1","run":{"id":"run-1","status":"queued","profile":"standard","finalDecision":"pending","createdAt":"2026-08-30T10:00:00Z","updatedAt":"2026-08-30T10:00:00Z"}}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := platform.NewClient(server.URL, "tok", "")
	err := execute(t, client, "validation", "run", "trigger",
		"--strategy-id", "strat-001",
		"--requested-indicators", "ema,zigzag",
		"--dataset-ids", "dataset-btc-1h-2025",
		"--backtest-report-ref", "blob://x")
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, "ok", result["status"])
	assert.Equal(t, "run-1", result["runId"])
}

func TestKeyRevokeOutputOmitsRawKey(t *testing.T) {
	out, _ := captureOutput(t)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/validation-bots/b/keys/revoke", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"requestId":"srv-1","botId":"b","key":{"id":"k","botId":"b","status":"revoked","createdAt":"2026-08-30T10:00:00Z","lastUsedAt":null,"revokedAt":"2026-08-30T12:00:00Z"}}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := platform.NewClient(server.URL, "tok", "")
	require.NoError(t, execute(t, client, "key", "revoke", "--bot-id", "b", "--key-id", "k"))
	assert.NotContains(t, out.String(), "rawKey")
}

func TestRunRejectsForbiddenBaseURL(t *testing.T) {
	_, errOut := captureOutput(t)
	t.Setenv("PLATFORM_API_BASE_URL", "https://api.binance.com")
	t.Setenv("TRADING_CLI_CONFIG", "")

	err := run(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Boundary violation")

	// The process-level handler writes the classified envelope.
	outputErrorEnvelope(err)
	var env envelope.ErrorEnvelope
	require.NoError(t, json.Unmarshal(errOut.Bytes(), &env))
	assert.Equal(t, "error", env.Status)
	assert.Contains(t, env.Message, "Boundary violation")
}
