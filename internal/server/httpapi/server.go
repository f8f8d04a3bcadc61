// Package httpapi is the HTTP delivery layer: the gin router, the session
// endpoints that carry the auth-cookie contract, and the address CRUD routes
// behind the access-token middleware.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mkazmer/bookmart/internal/logging"
	"github.com/mkazmer/bookmart/internal/server/models"
)

// TokenReader verifies access tokens and exposes the configured lifetimes the
// cookie writer needs. Satisfied by auth.TokenManager.
type TokenReader interface {
	UserIDFromAccessToken(tokenString string) (string, error)
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}

// SessionIssuer mints and rotates token pairs. Satisfied by sessions.Issuer.
type SessionIssuer interface {
	Issue(ctx context.Context, user *models.User, reqCtx models.RequestContext) (*models.TokenPair, error)
	Rotate(ctx context.Context, refreshToken string, reqCtx models.RequestContext) (*models.TokenPair, error)
}

// UserDirectory resolves the identity forwarded by the upstream
// authentication layer. Satisfied by the users repository.
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AddressService is the address CRUD surface. Satisfied by addresses.Service.
type AddressService interface {
	Create(ctx context.Context, userID uuid.UUID, street, city, state string) (*models.Address, error)
	Get(ctx context.Context, id, userID uuid.UUID) (*models.Address, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	Update(ctx context.Context, id, userID uuid.UUID, street, city, state string) (*models.Address, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

type Server struct {
	address   string
	logger    logging.Logger
	tokens    TokenReader
	issuer    SessionIssuer
	users     UserDirectory
	addresses AddressService
}

func NewServer(address string, logger logging.Logger, tokens TokenReader, issuer SessionIssuer, users UserDirectory, addresses AddressService) *Server {
	return &Server{
		address:   address,
		logger:    logger.With("module", "http_server"),
		tokens:    tokens,
		issuer:    issuer,
		users:     users,
		addresses: addresses,
	}
}

// Router assembles the gin engine. Exposed for handler tests.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.POST("/session", s.createSession)
	api.POST("/session/refresh", s.refreshSession)

	authed := api.Group("/addresses", s.requireAccessToken)
	authed.GET("", s.listAddresses)
	authed.POST("", s.createAddress)
	authed.GET("/:id", s.getAddress)
	authed.PUT("/:id", s.updateAddress)
	authed.DELETE("/:id", s.deleteAddress)

	return r
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// requestContext captures the request metadata persisted with every session
// record.
func requestContext(c *gin.Context) models.RequestContext {
	return models.RequestContext{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	}
}
