package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mkazmer/bookmart/internal/common"
)

const userIDContextKey = "userID"

// requireAccessToken authenticates the request with the access token from the
// auth cookie or an Authorization bearer header. An expired access token is
// silently rotated when a valid refresh cookie is present: fresh cookies are
// attached to the in-flight response and the request proceeds, body untouched.
func (s *Server) requireAccessToken(c *gin.Context) {
	token := accessTokenFromRequest(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access token missing"})
		return
	}

	rawID, err := s.tokens.UserIDFromAccessToken(token)
	if errors.Is(err, common.ErrTokenExpired) {
		rawID, err = s.silentRefresh(c)
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid access token"})
		return
	}

	userID, err := uuid.Parse(rawID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid access token"})
		return
	}

	c.Set(userIDContextKey, userID)
	c.Next()
}

// silentRefresh rotates the session behind an expired access token. On
// success it returns the authenticated user id and leaves fresh cookies on
// the response.
func (s *Server) silentRefresh(c *gin.Context) (string, error) {
	refresh, err := c.Cookie(common.RefreshTokenCookieName)
	if err != nil || refresh == "" {
		return "", common.ErrTokenExpired
	}

	pair, err := s.issuer.Rotate(c.Request.Context(), refresh, requestContext(c))
	if err != nil {
		return "", err
	}

	setTokenCookies(c.Writer, pair, s.tokens.AccessTTL(), s.tokens.RefreshTTL())
	s.logger.Debug(c.Request.Context(), "silently rotated session", "ip", c.ClientIP())
	return s.tokens.UserIDFromAccessToken(pair.AccessToken)
}

func accessTokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(common.AccessTokenCookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return ""
}

// authedUserID returns the user id placed by requireAccessToken.
func authedUserID(c *gin.Context) uuid.UUID {
	return c.MustGet(userIDContextKey).(uuid.UUID)
}
