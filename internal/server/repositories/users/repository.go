// Package users declares the read-only user lookup used to validate the
// identity forwarded by the upstream authentication layer. User accounts are
// created and managed elsewhere.
package users

import (
	"context"

	"github.com/google/uuid"
	"github.com/mkazmer/bookmart/internal/server/models"
)

// Repository defines user lookup operations.
type Repository interface {
	// GetByID returns the user with the given id, or common.ErrorNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}
