// Package identity derives request-correlation ids and idempotency keys
// for a single logical CLI operation. Seeded values are returned verbatim
// so a caller can replay an exact idempotency slot; generated values are
// unique per invocation. Nothing here is persisted.
package identity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Identity is the (request id, idempotency key) pair carried by one
// logical operation against the platform API.
type Identity struct {
	RequestID      string
	IdempotencyKey string
}

// New derives the base identity for an operation in the given namespace
// (e.g. "review-run", "validation-bot"). Non-blank seeds win over
// generated values.
func New(namespace, requestSeed, keySeed string) Identity {
	return Identity{
		RequestID:      RequestID(namespace, requestSeed),
		IdempotencyKey: IdempotencyKey(namespace, keySeed),
	}
}

// RequestID returns the seed verbatim when non-blank, otherwise a
// namespaced id embedding the current time.
func RequestID(namespace, seed string) string {
	if s := strings.TrimSpace(seed); s != "" {
		return s
	}
	return fmt.Sprintf("req-%s-%d", namespace, time.Now().UnixMilli())
}

// IdempotencyKey returns the seed verbatim when non-blank, otherwise a
// namespaced key embedding a fresh random token.
func IdempotencyKey(namespace, seed string) string {
	if s := strings.TrimSpace(seed); s != "" {
		return s
	}
	return fmt.Sprintf("idem-%s-%s", namespace, uuid.NewString())
}

// Render derives the per-step identity for one render request in a
// fan-out. The suffix is a pure function of (format, ordinal), so a
// replayed base identity reproduces the same set of sub-identities and
// retries of one step never collide with another step's slot.
func (id Identity) Render(format string, ordinal int) Identity {
	suffix := fmt.Sprintf("-render-%s-%d", format, ordinal)
	return Identity{
		RequestID:      id.RequestID + suffix,
		IdempotencyKey: id.IdempotencyKey + suffix,
	}
}
