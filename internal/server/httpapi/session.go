package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mkazmer/bookmart/internal/common"
	"github.com/mkazmer/bookmart/internal/server/models"
)

// createSession mints a token pair for the user identified by the upstream
// authentication proxy and attaches the pair as cookies. The response body
// carries only the access token.
func (s *Server) createSession(c *gin.Context) {
	rawID := c.GetHeader(common.AuthUserIDHeaderName)
	if rawID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	userID, err := uuid.Parse(rawID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
		return
	}

	user, err := s.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			return
		}
		s.logger.Error(c.Request.Context(), "failed to load user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	pair, err := s.issuer.Issue(c.Request.Context(), user, requestContext(c))
	if err != nil {
		s.logger.Error(c.Request.Context(), "failed to issue session", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate tokens"})
		return
	}

	s.writeSession(c, pair)
}

// refreshSession rotates the session identified by the refresh cookie.
func (s *Server) refreshSession(c *gin.Context) {
	refresh, err := c.Cookie(common.RefreshTokenCookieName)
	if err != nil || refresh == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token missing"})
		return
	}

	pair, err := s.issuer.Rotate(c.Request.Context(), refresh, requestContext(c))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRefreshSessionExpired):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
		case errors.Is(err, common.ErrorUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		default:
			s.logger.Error(c.Request.Context(), "failed to rotate session", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate tokens"})
		}
		return
	}

	s.writeSession(c, pair)
}

// writeSession attaches both cookies, then writes the 200 body holding only
// the access token.
func (s *Server) writeSession(c *gin.Context, pair *models.TokenPair) {
	setTokenCookies(c.Writer, pair, s.tokens.AccessTTL(), s.tokens.RefreshTTL())
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken})
}
