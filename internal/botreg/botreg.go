// Package botreg handles validation-bot lifecycle workflows:
// registration through invite codes or partner bootstrap, and API key
// rotation and revocation. Registration is the unauthenticated entry
// point; key management requires existing credentials.
package botreg

import (
	"context"
	"errors"
	"time"

	"github.com/lona-agency/trading-cli/internal/identity"
	"github.com/lona-agency/trading-cli/internal/payload"
	"github.com/lona-agency/trading-cli/internal/platform"
)

const namespace = "validation-bot"

// issuedKeyWarning accompanies every response that carries a raw key.
const issuedKeyWarning = "Store this key now. It will not be shown again."

var errAuthRequired = errors.New("Authentication required: set PLATFORM_API_BEARER_TOKEN (preferred) or PLATFORM_API_KEY.")

// Orchestrator runs bot workflows against a platform client.
type Orchestrator struct {
	client *platform.Client
}

// NewOrchestrator wires a bot orchestrator.
func NewOrchestrator(client *platform.Client) *Orchestrator {
	return &Orchestrator{client: client}
}

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

// BotInfo is the normalized projection of a bot record.
type BotInfo struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Status         string  `json:"status"`
	OwnerEmail     string  `json:"ownerEmail,omitempty"`
	TrialExpiresAt *string `json:"trialExpiresAt"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
}

func normalizeBot(bot platform.Bot) BotInfo {
	return BotInfo{
		ID:             bot.ID,
		Name:           bot.Name,
		Status:         bot.Status,
		OwnerEmail:     bot.OwnerEmail,
		TrialExpiresAt: formatTimePtr(bot.TrialExpiresAt),
		CreatedAt:      formatTime(bot.CreatedAt),
		UpdatedAt:      formatTime(bot.UpdatedAt),
	}
}

// RegistrationInfo is the normalized registration record.
type RegistrationInfo struct {
	ID        string `json:"id"`
	BotID     string `json:"botId"`
	Method    string `json:"method"`
	CreatedAt string `json:"createdAt"`
}

func normalizeRegistration(reg platform.BotRegistration) RegistrationInfo {
	return RegistrationInfo{
		ID:        reg.ID,
		BotID:     reg.BotID,
		Method:    reg.Method,
		CreatedAt: formatTime(reg.CreatedAt),
	}
}

// KeyInfo is key metadata without the secret value.
type KeyInfo struct {
	ID         string  `json:"id"`
	BotID      string  `json:"botId"`
	Status     string  `json:"status"`
	CreatedAt  string  `json:"createdAt"`
	LastUsedAt *string `json:"lastUsedAt"`
	RevokedAt  *string `json:"revokedAt"`
}

func normalizeKey(key platform.BotKeyMetadata) KeyInfo {
	return KeyInfo{
		ID:         key.ID,
		BotID:      key.BotID,
		Status:     key.Status,
		CreatedAt:  formatTime(key.CreatedAt),
		LastUsedAt: formatTimePtr(key.LastUsedAt),
		RevokedAt:  formatTimePtr(key.RevokedAt),
	}
}

// IssuedKeyResult carries a freshly issued key. This is the only place
// the raw secret appears, and it always travels with the warning.
type IssuedKeyResult struct {
	Key     KeyInfo `json:"key"`
	RawKey  string  `json:"rawKey"`
	Warning string  `json:"warning"`
}

func normalizeIssuedKey(issued platform.IssuedKey) IssuedKeyResult {
	return IssuedKeyResult{
		Key:     normalizeKey(issued.Key),
		RawKey:  issued.RawKey,
		Warning: issuedKeyWarning,
	}
}

// RegisterInput carries the register flags. Invite and partner modes
// share the struct; each mode reads its own subset.
type RegisterInput struct {
	InputPath          string
	InviteCode         string
	PartnerKey         string
	PartnerSecret      string
	OwnerEmail         string
	BotName            string
	MetadataJSON       string
	MetadataFile       string
	RequestIDSeed      string
	IdempotencyKeySeed string
}

// RegisterResult is the success envelope for both register modes.
type RegisterResult struct {
	Status         string           `json:"status"`
	Command        string           `json:"command"`
	RequestID      string           `json:"requestId"`
	IdempotencyKey string           `json:"idempotencyKey"`
	Bot            BotInfo          `json:"bot"`
	Registration   RegistrationInfo `json:"registration"`
	IssuedKey      IssuedKeyResult  `json:"issuedKey"`
}

// RegisterInvite registers a bot with an invite code. No credentials
// are required: this is how a bot obtains its first key.
func (o *Orchestrator) RegisterInvite(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	req, err := buildInviteRequest(in)
	if err != nil {
		return nil, err
	}

	id := identity.New(namespace, in.RequestIDSeed, in.IdempotencyKeySeed)
	resp, err := o.client.RegisterInvite(ctx, id, req)
	if err != nil {
		return nil, err
	}
	return registerResult("register invite", resp, id), nil
}

// RegisterPartner registers a bot through partner credentials.
func (o *Orchestrator) RegisterPartner(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	req, err := buildPartnerRequest(in)
	if err != nil {
		return nil, err
	}

	id := identity.New(namespace, in.RequestIDSeed, in.IdempotencyKeySeed)
	resp, err := o.client.RegisterPartner(ctx, id, req)
	if err != nil {
		return nil, err
	}
	return registerResult("register partner", resp, id), nil
}

func registerResult(command string, resp *platform.RegistrationResponse, id identity.Identity) *RegisterResult {
	return &RegisterResult{
		Status:         "ok",
		Command:        command,
		RequestID:      resp.RequestID,
		IdempotencyKey: id.IdempotencyKey,
		Bot:            normalizeBot(resp.Bot),
		Registration:   normalizeRegistration(resp.Registration),
		IssuedKey:      normalizeIssuedKey(resp.IssuedKey),
	}
}

func buildInviteRequest(in RegisterInput) (*platform.InviteRegistrationRequest, error) {
	required := []payload.Required{
		{Flag: "--invite-code", Value: in.InviteCode},
		{Flag: "--bot-name", Value: in.BotName},
	}
	return payload.Build(in.InputPath, "register invite payload", required, func() (*platform.InviteRegistrationRequest, error) {
		metadata, err := payload.Metadata(in.MetadataJSON, in.MetadataFile)
		if err != nil {
			return nil, err
		}
		return &platform.InviteRegistrationRequest{
			InviteCode: payload.NonEmpty(in.InviteCode),
			BotName:    payload.NonEmpty(in.BotName),
			Metadata:   metadata,
		}, nil
	})
}

func buildPartnerRequest(in RegisterInput) (*platform.PartnerBootstrapRequest, error) {
	required := []payload.Required{
		{Flag: "--partner-key", Value: in.PartnerKey},
		{Flag: "--partner-secret", Value: in.PartnerSecret},
		{Flag: "--owner-email", Value: in.OwnerEmail},
		{Flag: "--bot-name", Value: in.BotName},
	}
	return payload.Build(in.InputPath, "register partner payload", required, func() (*platform.PartnerBootstrapRequest, error) {
		metadata, err := payload.Metadata(in.MetadataJSON, in.MetadataFile)
		if err != nil {
			return nil, err
		}
		return &platform.PartnerBootstrapRequest{
			PartnerKey:    payload.NonEmpty(in.PartnerKey),
			PartnerSecret: payload.NonEmpty(in.PartnerSecret),
			OwnerEmail:    payload.NonEmpty(in.OwnerEmail),
			BotName:       payload.NonEmpty(in.BotName),
			Metadata:      metadata,
		}, nil
	})
}

// KeyInput carries the key rotate/revoke flags.
type KeyInput struct {
	BotID              string
	KeyID              string
	Reason             string
	RequestIDSeed      string
	IdempotencyKeySeed string
}

// RotateResult is the success envelope for key rotate. The replacement
// key's raw value appears here once.
type RotateResult struct {
	Status         string          `json:"status"`
	Command        string          `json:"command"`
	RequestID      string          `json:"requestId"`
	IdempotencyKey string          `json:"idempotencyKey"`
	BotID          string          `json:"botId"`
	IssuedKey      IssuedKeyResult `json:"issuedKey"`
}

// RotateKey issues a replacement key for a bot.
func (o *Orchestrator) RotateKey(ctx context.Context, in KeyInput) (*RotateResult, error) {
	if !o.client.HasCredentials() {
		return nil, errAuthRequired
	}

	botID := payload.NonEmpty(in.BotID)
	if botID == "" {
		return nil, &platform.ValidationError{Field: "--bot-id", Message: "--bot-id is required."}
	}

	id := identity.New(namespace, in.RequestIDSeed, in.IdempotencyKeySeed)
	resp, err := o.client.RotateKey(ctx, botID, id, payload.NonEmpty(in.Reason))
	if err != nil {
		return nil, err
	}

	return &RotateResult{
		Status:         "ok",
		Command:        "key rotate",
		RequestID:      resp.RequestID,
		IdempotencyKey: id.IdempotencyKey,
		BotID:          resp.BotID,
		IssuedKey:      normalizeIssuedKey(resp.IssuedKey),
	}, nil
}

// RevokeResult is the success envelope for key revoke. It carries key
// metadata only; no raw key field exists on this type.
type RevokeResult struct {
	Status         string  `json:"status"`
	Command        string  `json:"command"`
	RequestID      string  `json:"requestId"`
	IdempotencyKey string  `json:"idempotencyKey"`
	BotID          string  `json:"botId"`
	Key            KeyInfo `json:"key"`
}

// RevokeKey revokes one of a bot's keys.
func (o *Orchestrator) RevokeKey(ctx context.Context, in KeyInput) (*RevokeResult, error) {
	if !o.client.HasCredentials() {
		return nil, errAuthRequired
	}

	botID := payload.NonEmpty(in.BotID)
	if botID == "" {
		return nil, &platform.ValidationError{Field: "--bot-id", Message: "--bot-id is required."}
	}
	keyID := payload.NonEmpty(in.KeyID)
	if keyID == "" {
		return nil, &platform.ValidationError{Field: "--key-id", Message: "--key-id is required."}
	}

	id := identity.New(namespace, in.RequestIDSeed, in.IdempotencyKeySeed)
	resp, err := o.client.RevokeKey(ctx, botID, keyID, id, payload.NonEmpty(in.Reason))
	if err != nil {
		return nil, err
	}

	return &RevokeResult{
		Status:         "ok",
		Command:        "key revoke",
		RequestID:      resp.RequestID,
		IdempotencyKey: id.IdempotencyKey,
		BotID:          resp.BotID,
		Key:            normalizeKey(resp.Key),
	}, nil
}
