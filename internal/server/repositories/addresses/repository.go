// Package addresses declares the repository contract for shipping addresses.
package addresses

import (
	"context"

	"github.com/google/uuid"
	"github.com/mkazmer/bookmart/internal/server/models"
)

// Repository defines CRUD operations for shipping addresses. Every operation
// is scoped to the owning user: an id belonging to another user behaves as
// not-found.
type Repository interface {
	// Create inserts a new address and returns it.
	Create(ctx context.Context, address *models.Address) (*models.Address, error)

	// GetByID returns the user's address with the given id, or
	// common.ErrorNotFound.
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Address, error)

	// Update rewrites the street/city/state of an existing address.
	Update(ctx context.Context, address *models.Address) error

	// Delete removes the user's address with the given id. It returns
	// common.ErrorNotFound when no row was deleted.
	Delete(ctx context.Context, id, userID uuid.UUID) error

	// ListByUser returns all addresses of the user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error)

	// Exists reports whether the user already has an address with exactly
	// these fields.
	Exists(ctx context.Context, userID uuid.UUID, street, city, state string) (bool, error)
}
