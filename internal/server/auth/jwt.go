// Package auth implements minting and verification of the HS256 token pair
// used by the session service: a short-lived access token and a long-lived
// refresh token, distinguished by a token_type claim.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mkazmer/bookmart/internal/common"
	"github.com/mkazmer/bookmart/internal/server/models"
)

const (
	AccessTokenType  = "access"
	RefreshTokenType = "refresh"
)

var signingMethod = jwt.SigningMethodHS256

// Claims — registered claims plus the user id and the token class.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	TokenType string `json:"token_type"`
}

// TokenManager signs and verifies token pairs with a shared HMAC secret.
type TokenManager struct {
	secretKey  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenManager(secretKey []byte, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secretKey:  secretKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// AccessTTL returns the configured access-token lifetime, which is also the
// access cookie lifetime.
func (m *TokenManager) AccessTTL() time.Duration { return m.accessTTL }

// RefreshTTL returns the configured refresh-token lifetime, which is also the
// refresh cookie lifetime.
func (m *TokenManager) RefreshTTL() time.Duration { return m.refreshTTL }

// GeneratePair mints a fresh access/refresh pair for userID. Each call
// produces an independent pair; no prior state is consulted.
func (m *TokenManager) GeneratePair(userID string) (*models.TokenPair, error) {
	access, err := m.generate(userID, AccessTokenType, m.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := m.generate(userID, RefreshTokenType, m.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// UserIDFromAccessToken verifies an access token and returns the user id.
// Expired tokens yield common.ErrTokenExpired so callers can distinguish
// expiry from tampering.
func (m *TokenManager) UserIDFromAccessToken(tokenString string) (string, error) {
	claims, err := m.parse(tokenString, AccessTokenType)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// UserIDFromRefreshToken verifies a refresh token and returns the user id.
func (m *TokenManager) UserIDFromRefreshToken(tokenString string) (string, error) {
	claims, err := m.parse(tokenString, RefreshTokenType)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

func (m *TokenManager) generate(userID, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(signingMethod, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    userID,
		TokenType: tokenType,
	})
	return token.SignedString(m.secretKey)
}

func (m *TokenManager) parse(tokenString, wantType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != signingMethod {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid || claims.TokenType != wantType {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
