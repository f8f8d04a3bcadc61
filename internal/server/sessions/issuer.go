// Package sessions implements issuance and rotation of the access/refresh
// token pair, plus deferred persistence of refresh-session records.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mkazmer/bookmart/internal/common"
	"github.com/mkazmer/bookmart/internal/logging"
	"github.com/mkazmer/bookmart/internal/server/models"
	"github.com/mkazmer/bookmart/internal/server/repositories/refreshsessions"
)

// TokenSource mints token pairs. Satisfied by auth.TokenManager.
type TokenSource interface {
	GeneratePair(userID string) (*models.TokenPair, error)
	UserIDFromRefreshToken(tokenString string) (string, error)
}

// makeReference is a seam for testing common.MakeReference failures.
var makeReference = common.MakeReference

// Issuer is the token-issuance service. Issue mints an independent pair per
// call; no session state is read to decide behavior. Persistence of the
// session record is handed to the Recorder and completes in the background.
type Issuer struct {
	tokens   TokenSource
	store    refreshsessions.Repository
	recorder *Recorder
	logger   logging.Logger
}

func NewIssuer(tokens TokenSource, store refreshsessions.Repository, recorder *Recorder, logger logging.Logger) *Issuer {
	return &Issuer{
		tokens:   tokens,
		store:    store,
		recorder: recorder,
		logger:   logger.With("module", "session_issuer"),
	}
}

// Issue mints a token pair for an authenticated user and submits the session
// record for persistence. The submission happens before Issue returns, so the
// record is always queued before any response carrying the cookies can be
// written; durability itself is asynchronous and its failures are logged, not
// surfaced.
//
// A missing user id or an empty token from the signer yields
// common.ErrTokenGeneration with a nil pair — callers must check the error,
// never the pair alone.
func (i *Issuer) Issue(ctx context.Context, user *models.User, reqCtx models.RequestContext) (*models.TokenPair, error) {
	if user == nil || user.ID == uuid.Nil {
		return nil, common.ErrTokenGeneration
	}

	pair, err := i.tokens.GeneratePair(user.ID.String())
	if err != nil {
		i.logger.Error(ctx, "signer failed", "user_id", user.ID.String(), "error", err.Error())
		return nil, common.ErrTokenGeneration
	}
	if pair == nil || pair.AccessToken == "" || pair.RefreshToken == "" {
		i.logger.Error(ctx, "signer returned incomplete pair", "user_id", user.ID.String())
		return nil, common.ErrTokenGeneration
	}

	// the reference is a log-correlation id only, issuance proceeds without it
	reference, err := makeReference("SES", 7)
	if err != nil {
		i.logger.Warn(ctx, "failed to make session reference", "user_id", user.ID.String(), "error", err.Error())
		reference = ""
	}

	i.recorder.Submit(Record{
		UserID:    user.ID,
		Context:   reqCtx,
		Pair:      *pair,
		Reference: reference,
	})

	return pair, nil
}

// Rotate validates a presented refresh token against its stored session,
// revokes the session synchronously, and issues a fresh pair for the same
// user. Unknown or tampered tokens yield common.ErrorUnauthorized; a known
// but expired session yields common.ErrRefreshSessionExpired.
func (i *Issuer) Rotate(ctx context.Context, refreshToken string, reqCtx models.RequestContext) (*models.TokenPair, error) {
	rawUserID, err := i.tokens.UserIDFromRefreshToken(refreshToken)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	session, err := i.store.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh session: %w", err)
	}
	if session.UserID != userID {
		return nil, common.ErrorUnauthorized
	}
	if session.ExpiresAt.Before(time.Now()) {
		// best-effort cleanup, the row is dead either way
		if err := i.store.DeleteByToken(ctx, refreshToken); err != nil {
			i.logger.Warn(ctx, "failed to delete expired refresh session", "reference", session.Reference, "error", err.Error())
		}
		return nil, common.ErrRefreshSessionExpired
	}

	if err := i.store.DeleteByToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("error revoking refresh session: %w", err)
	}

	return i.Issue(ctx, &models.User{ID: userID}, reqCtx)
}
