// Package refreshsessions declares the server-side repository contract for
// the refresh-session records backing issued token pairs.
package refreshsessions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mkazmer/bookmart/internal/server/models"
)

// Repository defines operations for recording, retrieving, and revoking
// refresh sessions.
type Repository interface {
	// Create stores the record of a just-issued token pair for userID with an
	// expiry of now+validity. The tokens are received in clear and persisted
	// as digests; reqCtx is kept verbatim for audit.
	Create(ctx context.Context, userID uuid.UUID, reqCtx models.RequestContext, pair models.TokenPair, validity time.Duration, reference string) error

	// FindByToken looks up the session for a presented refresh token.
	// Implementations should return common.ErrorNotFound when absent.
	FindByToken(ctx context.Context, token string) (*models.RefreshSession, error)

	// DeleteByToken revokes the session for a presented refresh token.
	// Deleting a non-existent token is not an error.
	DeleteByToken(ctx context.Context, token string) error
}
