package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Consumer-contract helpers for the platform's v1 research surface and v2
// conversation surface. These validate envelope shape strictly so a
// contract test fails loudly when the platform drifts.

// MarketScanRequest is the research probe payload.
type MarketScanRequest struct {
	AssetClasses []string             `json:"assetClasses"`
	Capital      float64              `json:"capital"`
	Constraints  MarketScanConstraint `json:"constraints"`
}

// MarketScanConstraint bounds a scan's risk envelope.
type MarketScanConstraint struct {
	MaxPositionPct float64 `json:"maxPositionPct"`
	MaxDrawdownPct float64 `json:"maxDrawdownPct"`
}

// DefaultMarketScanRequest is the canonical contract probe.
func DefaultMarketScanRequest() *MarketScanRequest {
	return &MarketScanRequest{
		AssetClasses: []string{"crypto"},
		Capital:      25000,
		Constraints: MarketScanConstraint{
			MaxPositionPct: 20,
			MaxDrawdownPct: 12,
		},
	}
}

// MarketScanEnvelope is the validated market-scan response.
type MarketScanEnvelope struct {
	RequestID     string
	StrategyIdeas []json.RawMessage
}

// StrategiesEnvelope is the validated strategy-list response.
type StrategiesEnvelope struct {
	RequestID string
	Items     []json.RawMessage
}

// ConversationSession identifies a created conversation session.
type ConversationSession struct {
	RequestID string
	SessionID string
}

// ConversationTurn identifies a created turn within a session.
type ConversationTurn struct {
	RequestID string
	SessionID string
	TurnID    string
}

// MarketScan issues the research probe and validates its envelope.
func (c *Client) MarketScan(ctx context.Context, requestID string, req *MarketScanRequest) (*MarketScanEnvelope, error) {
	if req == nil {
		req = DefaultMarketScanRequest()
	}

	var payload struct {
		RequestID     string            `json:"requestId"`
		StrategyIdeas []json.RawMessage `json:"strategyIdeas"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/research/market-scan", requestID, "", req, &payload); err != nil {
		return nil, err
	}
	if err := requireField(payload.RequestID, "requestId", "market-scan"); err != nil {
		return nil, err
	}
	if payload.StrategyIdeas == nil {
		return nil, fmt.Errorf("market-scan expected array field 'strategyIdeas'")
	}
	return &MarketScanEnvelope{RequestID: payload.RequestID, StrategyIdeas: payload.StrategyIdeas}, nil
}

// ListStrategies fetches the strategy catalog and validates its envelope.
func (c *Client) ListStrategies(ctx context.Context, requestID string) (*StrategiesEnvelope, error) {
	var payload struct {
		RequestID string            `json:"requestId"`
		Items     []json.RawMessage `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/strategies", requestID, "", nil, &payload); err != nil {
		return nil, err
	}
	if err := requireField(payload.RequestID, "requestId", "list-strategies"); err != nil {
		return nil, err
	}
	if payload.Items == nil {
		return nil, fmt.Errorf("list-strategies expected array field 'items'")
	}
	return &StrategiesEnvelope{RequestID: payload.RequestID, Items: payload.Items}, nil
}

// CreateConversationSession opens a conversation session.
func (c *Client) CreateConversationSession(ctx context.Context, requestID, channel, topic string) (*ConversationSession, error) {
	body := map[string]any{
		"channel": channel,
		"topic":   topic,
	}

	var payload struct {
		RequestID string `json:"requestId"`
		Session   struct {
			ID string `json:"id"`
		} `json:"session"`
	}
	if err := c.do(ctx, http.MethodPost, "/v2/conversations/sessions", requestID, "", body, &payload); err != nil {
		return nil, err
	}
	if err := requireField(payload.RequestID, "requestId", "create-conversation-session"); err != nil {
		return nil, err
	}
	if err := requireField(payload.Session.ID, "session.id", "create-conversation-session"); err != nil {
		return nil, err
	}
	return &ConversationSession{RequestID: payload.RequestID, SessionID: payload.Session.ID}, nil
}

// CreateConversationTurn appends a user turn to a session, checking the
// session id echoes back consistently.
func (c *Client) CreateConversationTurn(ctx context.Context, requestID, sessionID, message string) (*ConversationTurn, error) {
	path := fmt.Sprintf("/v2/conversations/sessions/%s/turns", url.PathEscape(sessionID))
	body := map[string]any{
		"role":    "user",
		"message": message,
	}

	var payload struct {
		RequestID string `json:"requestId"`
		SessionID string `json:"sessionId"`
		Turn      struct {
			ID        string `json:"id"`
			SessionID string `json:"sessionId"`
		} `json:"turn"`
	}
	if err := c.do(ctx, http.MethodPost, path, requestID, "", body, &payload); err != nil {
		return nil, err
	}
	if err := requireField(payload.RequestID, "requestId", "create-conversation-turn"); err != nil {
		return nil, err
	}
	if payload.SessionID != sessionID {
		return nil, fmt.Errorf("create-conversation-turn expected sessionId %q but received %q", sessionID, payload.SessionID)
	}
	if payload.Turn.SessionID != sessionID {
		return nil, fmt.Errorf("create-conversation-turn.turn expected sessionId %q but received %q", sessionID, payload.Turn.SessionID)
	}
	if err := requireField(payload.Turn.ID, "turn.id", "create-conversation-turn"); err != nil {
		return nil, err
	}
	return &ConversationTurn{RequestID: payload.RequestID, SessionID: payload.SessionID, TurnID: payload.Turn.ID}, nil
}

func requireField(value, field, operation string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s expected non-empty string field '%s'", operation, field)
	}
	return nil
}
