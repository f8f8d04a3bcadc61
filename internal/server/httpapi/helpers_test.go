package httpapi

import (
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mkazmer/bookmart/internal/common"
	"github.com/mkazmer/bookmart/internal/logging"
	"github.com/mkazmer/bookmart/internal/server/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeTokens struct {
	accessTTL  time.Duration
	refreshTTL time.Duration
	// access token -> user id; tokens absent from the map are invalid
	users   map[string]string
	expired map[string]bool
}

func (f *fakeTokens) UserIDFromAccessToken(tokenString string) (string, error) {
	if f.expired[tokenString] {
		return "", common.ErrTokenExpired
	}
	id, ok := f.users[tokenString]
	if !ok {
		return "", common.ErrInvalidToken
	}
	return id, nil
}

func (f *fakeTokens) AccessTTL() time.Duration  { return f.accessTTL }
func (f *fakeTokens) RefreshTTL() time.Duration { return f.refreshTTL }

type fakeIssuer struct {
	pair      *models.TokenPair
	issueErr  error
	rotateErr error

	issuedFor  []uuid.UUID
	rotated    []string
	lastReqCtx models.RequestContext
}

func (f *fakeIssuer) Issue(ctx context.Context, user *models.User, reqCtx models.RequestContext) (*models.TokenPair, error) {
	f.issuedFor = append(f.issuedFor, user.ID)
	f.lastReqCtx = reqCtx
	if f.issueErr != nil {
		return nil, f.issueErr
	}
	return f.pair, nil
}

func (f *fakeIssuer) Rotate(ctx context.Context, refreshToken string, reqCtx models.RequestContext) (*models.TokenPair, error) {
	f.rotated = append(f.rotated, refreshToken)
	f.lastReqCtx = reqCtx
	if f.rotateErr != nil {
		return nil, f.rotateErr
	}
	return f.pair, nil
}

type fakeUsers struct {
	byID map[uuid.UUID]*models.User
}

func (f *fakeUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return user, nil
}

type fakeAddresses struct {
	byID      map[uuid.UUID]*models.Address
	createErr error
	updateErr error
}

func newFakeAddresses() *fakeAddresses {
	return &fakeAddresses{byID: make(map[uuid.UUID]*models.Address)}
}

func (f *fakeAddresses) Create(ctx context.Context, userID uuid.UUID, street, city, state string) (*models.Address, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	address := &models.Address{ID: uuid.New(), UserID: userID, Street: street, City: city, State: state}
	f.byID[address.ID] = address
	return address, nil
}

func (f *fakeAddresses) Get(ctx context.Context, id, userID uuid.UUID) (*models.Address, error) {
	address, ok := f.byID[id]
	if !ok || address.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return address, nil
}

func (f *fakeAddresses) List(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	result := make([]models.Address, 0)
	for _, address := range f.byID {
		if address.UserID == userID {
			result = append(result, *address)
		}
	}
	return result, nil
}

func (f *fakeAddresses) Update(ctx context.Context, id, userID uuid.UUID, street, city, state string) (*models.Address, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	address, ok := f.byID[id]
	if !ok || address.UserID != userID {
		return nil, common.ErrorNotFound
	}
	address.Street, address.City, address.State = street, city, state
	return address, nil
}

func (f *fakeAddresses) Delete(ctx context.Context, id, userID uuid.UUID) error {
	address, ok := f.byID[id]
	if !ok || address.UserID != userID {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

type testEnv struct {
	router    *gin.Engine
	tokens    *fakeTokens
	issuer    *fakeIssuer
	users     *fakeUsers
	addresses *fakeAddresses
}

func newTestEnv() *testEnv {
	env := &testEnv{
		tokens: &fakeTokens{
			accessTTL:  15 * time.Minute,
			refreshTTL: 7 * 24 * time.Hour,
			users:      make(map[string]string),
			expired:    make(map[string]bool),
		},
		issuer:    &fakeIssuer{pair: &models.TokenPair{AccessToken: "fresh-access", RefreshToken: "fresh-refresh"}},
		users:     &fakeUsers{byID: make(map[uuid.UUID]*models.User)},
		addresses: newFakeAddresses(),
	}
	srv := NewServer(":0", logging.NewJSONLogger(io.Discard), env.tokens, env.issuer, env.users, env.addresses)
	env.router = srv.Router()
	return env
}
