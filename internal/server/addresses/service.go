// Package addresses contains the business rules for shipping addresses: a
// user cannot hold two identical addresses, and updates that change nothing
// are rejected.
package addresses

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mkazmer/bookmart/internal/common"
	"github.com/mkazmer/bookmart/internal/dbx"
	"github.com/mkazmer/bookmart/internal/logging"
	"github.com/mkazmer/bookmart/internal/server/models"
	"github.com/mkazmer/bookmart/internal/server/repositories/repomanager"
)

type Service struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	logger logging.Logger
}

func NewService(db *sql.DB, repos repomanager.RepositoryManager, logger logging.Logger) *Service {
	return &Service{
		db:     db,
		repos:  repos,
		logger: logger.With("module", "address_service"),
	}
}

// Create adds a new address for the user. An identical existing address
// yields common.ErrorAlreadyExists. The existence check and the insert run in
// one transaction; concurrent identical creates that slip past the check are
// stopped by the table's unique index, which the repository reports as the
// same common.ErrorAlreadyExists.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, street, city, state string) (*models.Address, error) {
	address := &models.Address{
		ID:     uuid.New(),
		UserID: userID,
		Street: street,
		City:   city,
		State:  state,
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Addresses(tx)

		exists, err := repo.Exists(ctx, userID, street, city, state)
		if err != nil {
			return fmt.Errorf("error checking address: %w", err)
		}
		if exists {
			return common.ErrorAlreadyExists
		}

		created, err := repo.Create(ctx, address)
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return common.ErrorAlreadyExists
			}
			return fmt.Errorf("error creating address: %w", err)
		}
		address = created
		return nil
	}); err != nil {
		return nil, err
	}
	return address, nil
}

// Get returns the user's address with the given id.
func (s *Service) Get(ctx context.Context, id, userID uuid.UUID) (*models.Address, error) {
	return s.repos.Addresses(s.db).GetByID(ctx, id, userID)
}

// List returns all addresses of the user.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	return s.repos.Addresses(s.db).ListByUser(ctx, userID)
}

// Update rewrites an existing address inside one transaction. A missing
// address yields common.ErrorNotFound; values identical to the stored ones,
// or colliding with another stored address, yield common.ErrorAlreadyExists.
func (s *Service) Update(ctx context.Context, id, userID uuid.UUID, street, city, state string) (*models.Address, error) {
	var updated *models.Address
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Addresses(tx)

		current, err := repo.GetByID(ctx, id, userID)
		if err != nil {
			return err
		}
		if current.Same(street, city, state) {
			return common.ErrorAlreadyExists
		}

		current.Street = street
		current.City = city
		current.State = state
		if err := repo.Update(ctx, current); err != nil {
			return err
		}
		updated = current
		return nil
	}); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the user's address with the given id.
func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return s.repos.Addresses(s.db).Delete(ctx, id, userID)
}
