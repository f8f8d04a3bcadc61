package refreshsessions

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mkazmer/bookmart/internal/common"
	"github.com/mkazmer/bookmart/internal/dbx"
	"github.com/mkazmer/bookmart/internal/server/models"
	"golang.org/x/crypto/sha3"
)

// TokenDigest returns the hex SHA3-256 digest under which a token is stored.
// Digests keep the table useless to an attacker with read access while still
// allowing exact lookups.
func TokenDigest(token string) string {
	sum := sha3.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
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

// Create inserts a new refresh-session row. Tokens never hit the table in
// clear; only their digests do.
func (r *PostgresRepository) Create(ctx context.Context, userID uuid.UUID, reqCtx models.RequestContext, pair models.TokenPair, validity time.Duration, reference string) error {
	query := `
		INSERT INTO refresh_sessions (id, user_id, token_digest, access_digest, user_agent, ip_address, reference, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := r.db.ExecContext(ctx, query,
		uuid.New(), userID,
		TokenDigest(pair.RefreshToken), TokenDigest(pair.AccessToken),
		reqCtx.UserAgent, reqCtx.IPAddress,
		reference, time.Now().Add(validity),
	); err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	return nil
}

// FindByToken returns the session row for the presented refresh token.
// If not found, it returns common.ErrorNotFound.
func (r *PostgresRepository) FindByToken(ctx context.Context, token string) (*models.RefreshSession, error) {
	query := `
		SELECT id, user_id, reference, expires_at, created_at
		FROM refresh_sessions
		WHERE token_digest = $1
	`
	session := &models.RefreshSession{TokenDigest: TokenDigest(token)}
	if err := r.db.QueryRowContext(ctx, query, session.TokenDigest).
		Scan(&session.ID, &session.UserID, &session.Reference, &session.ExpiresAt, &session.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return session, nil
}

// DeleteByToken removes the session for the presented refresh token.
func (r *PostgresRepository) DeleteByToken(ctx context.Context, token string) error {
	query := `
		DELETE FROM refresh_sessions
		WHERE token_digest = $1
	`
	if _, err := r.db.ExecContext(ctx, query, TokenDigest(token)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
