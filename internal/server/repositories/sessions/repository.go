// Package sessions declares the server-side contract for auth sessions: an
// opaque token mapped to a user id until it expires.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/server/models"
)

// Repository defines operations for issuing, resolving and revoking sessions.
type Repository interface {
	// Create stores a session for userID with an expiry of now+validity.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// Find resolves a token. Implementations return common.ErrorNotFound when
	// the token is unknown; expiry is checked by the caller.
	Find(ctx context.Context, token string) (*models.Session, error)

	// Delete removes a session. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error
}
