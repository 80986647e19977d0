// Package sessioncache mirrors active sessions keyed by user identity. Entries
// are written on login and on external handoff, replaced by an empty session
// when revoked, and expire by TTL.
package sessioncache

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/circle/internal/social/domain"
)

// ErrMiss reports that no live session exists for the key.
var ErrMiss = errors.New("sessioncache: miss")

const keyPrefix = "session:"

// Key returns the cache key for a user identity.
func Key(userID string) string { return keyPrefix + userID }

type Cache interface {
	// Get returns the session stored for userID or ErrMiss.
	Get(ctx context.Context, userID string) (domain.Session, error)

	// Set stores s under s.UserID, replacing any previous session.
	Set(ctx context.Context, s domain.Session, ttl time.Duration) error

	// Delete removes the session. Deleting a missing key is not an error.
	Delete(ctx context.Context, userID string) error

	Ping(ctx context.Context) error
}
