// Package session holds server-side session state. The browser cookie only
// carries an opaque session ID; the identity itself lives in a Store keyed by
// that ID, so the store can be swapped for a distributed one without touching
// the handlers.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/guildpulse/dashboard/internal/domain"
)

// TTL is the rolling session lifetime: every successful Get extends it.
const TTL = 7 * 24 * time.Hour

// ErrNotFound is returned when a session ID resolves to nothing, either
// because it never existed or because it expired. Callers cannot tell the
// two apart.
var ErrNotFound = errors.New("session not found")

// Store maps session IDs to identities with a rolling TTL.
type Store interface {
	// Get returns the identity for sid and extends its TTL.
	Get(ctx context.Context, sid uuid.UUID) (*domain.Identity, error)
	// Put stores the identity under sid with a fresh TTL, replacing any
	// previous value.
	Put(ctx context.Context, sid uuid.UUID, identity *domain.Identity) error
	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, sid uuid.UUID) error
}
