package addresses

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mkazmer/bookmart/internal/common"
	"github.com/mkazmer/bookmart/internal/dbx"
	"github.com/mkazmer/bookmart/internal/server/models"
)

// isUniqueViolation reports whether err is a PostgreSQL unique_violation
// (the shipping_addresses per-user unique index).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, address *models.Address) (*models.Address, error) {
	query := `
		INSERT INTO shipping_addresses (id, user_id, street, city, state)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	if err := r.db.QueryRowContext(ctx, query,
		address.ID, address.UserID, address.Street, address.City, address.State).
		Scan(&address.CreatedAt, &address.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return address, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Address, error) {
	query := `
		SELECT id, user_id, street, city, state, created_at, updated_at
		FROM shipping_addresses
		WHERE id = $1 AND user_id = $2
	`
	address := &models.Address{}
	if err := r.db.QueryRowContext(ctx, query, id, userID).
		Scan(&address.ID, &address.UserID, &address.Street, &address.City, &address.State,
			&address.CreatedAt, &address.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return address, nil
}

func (r *PostgresRepository) Update(ctx context.Context, address *models.Address) error {
	query := `
		UPDATE shipping_addresses
		SET street = $1, city = $2, state = $3, updated_at = now()
		WHERE id = $4 AND user_id = $5
	`
	res, err := r.db.ExecContext(ctx, query,
		address.Street, address.City, address.State, address.ID, address.UserID)
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	query := `
		DELETE FROM shipping_addresses
		WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	query := `
		SELECT id, user_id, street, city, state, created_at, updated_at
		FROM shipping_addresses
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Address, 0)
	for rows.Next() {
		var address models.Address
		if err := rows.Scan(&address.ID, &address.UserID, &address.Street, &address.City,
			&address.State, &address.CreatedAt, &address.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, address)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, userID uuid.UUID, street, city, state string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM shipping_addresses
			WHERE user_id = $1 AND street = $2 AND city = $3 AND state = $4
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, street, city, state).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}
