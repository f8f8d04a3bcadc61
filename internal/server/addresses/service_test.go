package addresses

import (
	"context"
	"database/sql"
	"io"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/mkazmer/bookmart/internal/common"
	"github.com/mkazmer/bookmart/internal/dbx"
	"github.com/mkazmer/bookmart/internal/logging"
	"github.com/mkazmer/bookmart/internal/server/models"
	addressrepo "github.com/mkazmer/bookmart/internal/server/repositories/addresses"
	"github.com/mkazmer/bookmart/internal/server/repositories/refreshsessions"
	"github.com/mkazmer/bookmart/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

type addressKey struct {
	userID              uuid.UUID
	street, city, state string
}

// fakeRepo is an in-memory addresses.Repository that mirrors the table's
// unique index: a second insert of the same (user, street, city, state)
// fails with common.ErrorAlreadyExists. existsBarrier, when set, holds every
// Exists call until all expected callers have arrived, forcing concurrent
// creates through the check window together.
type fakeRepo struct {
	mu            sync.Mutex
	byID          map[uuid.UUID]*models.Address
	byKey         map[addressKey]uuid.UUID
	existsBarrier *sync.WaitGroup

	created []*models.Address
	updated []*models.Address
	deleted []uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		byID:  make(map[uuid.UUID]*models.Address),
		byKey: make(map[addressKey]uuid.UUID),
	}
}

func keyOf(a *models.Address) addressKey {
	return addressKey{userID: a.UserID, street: a.Street, city: a.City, state: a.State}
}

func (f *fakeRepo) put(a *models.Address) {
	f.byID[a.ID] = a
	f.byKey[keyOf(a)] = a.ID
}

func (f *fakeRepo) Create(ctx context.Context, address *models.Address) (*models.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, taken := f.byKey[keyOf(address)]; taken {
		return nil, common.ErrorAlreadyExists
	}
	f.created = append(f.created, address)
	f.put(address)
	return address, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	address, ok := f.byID[id]
	if !ok || address.UserID != userID {
		return nil, common.ErrorNotFound
	}
	copied := *address
	return &copied, nil
}

func (f *fakeRepo) Update(ctx context.Context, address *models.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.byID[address.ID]
	if !ok {
		return common.ErrorNotFound
	}
	if owner, taken := f.byKey[keyOf(address)]; taken && owner != address.ID {
		return common.ErrorAlreadyExists
	}
	delete(f.byKey, keyOf(current))
	f.updated = append(f.updated, address)
	f.put(address)
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	address, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	f.deleted = append(f.deleted, id)
	delete(f.byKey, keyOf(address))
	delete(f.byID, id)
	return nil
}

func (f *fakeRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]models.Address, 0)
	for _, address := range f.byID {
		if address.UserID == userID {
			result = append(result, *address)
		}
	}
	return result, nil
}

func (f *fakeRepo) Exists(ctx context.Context, userID uuid.UUID, street, city, state string) (bool, error) {
	if f.existsBarrier != nil {
		f.existsBarrier.Done()
		f.existsBarrier.Wait()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, taken := f.byKey[addressKey{userID: userID, street: street, city: city, state: state}]
	return taken, nil
}

type fakeRepoManager struct {
	addresses *fakeRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository           { return nil }
func (m *fakeRepoManager) RefreshSessions(db dbx.DBTX) refreshsessions.Repository {
	return nil
}
func (m *fakeRepoManager) Addresses(db dbx.DBTX) addressrepo.Repository { return m.addresses }

func newServiceForTest(t *testing.T, repo *fakeRepo) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewService(db, &fakeRepoManager{addresses: repo}, logging.NewJSONLogger(io.Discard)), mock
}

func TestCreate_NewAddress(t *testing.T) {
	repo := newFakeRepo()
	svc, mock := newServiceForTest(t, repo)
	mock.ExpectBegin()
	mock.ExpectCommit()

	userID := uuid.New()
	address, err := svc.Create(context.Background(), userID, "1 Main St", "Springfield", "IL")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, address.ID)
	require.Equal(t, userID, address.UserID)
	require.Len(t, repo.created, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateRejected(t *testing.T) {
	repo := newFakeRepo()
	svc, mock := newServiceForTest(t, repo)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()

	userID := uuid.New()
	_, err := svc.Create(context.Background(), userID, "1 Main St", "Springfield", "IL")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), userID, "1 Main St", "Springfield", "IL")
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
	require.Len(t, repo.created, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_ConcurrentDuplicatesInsertOnce(t *testing.T) {
	repo := newFakeRepo()
	svc, mock := newServiceForTest(t, repo)
	mock.MatchExpectationsInOrder(false)
	mock.ExpectBegin()
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectRollback()

	// both requests reach the existence check before either inserts
	barrier := &sync.WaitGroup{}
	barrier.Add(2)
	repo.existsBarrier = barrier

	userID := uuid.New()
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := svc.Create(context.Background(), userID, "1 Main St", "Springfield", "IL")
			errs <- err
		}()
	}

	var failures []error
	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			failures = append(failures, err)
		}
	}

	require.Len(t, failures, 1, "exactly one of two identical concurrent creates may succeed")
	require.ErrorIs(t, failures[0], common.ErrorAlreadyExists)
	require.Len(t, repo.created, 1, "the user must not end up holding two identical addresses")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_ChangesFields(t *testing.T) {
	repo := newFakeRepo()
	svc, mock := newServiceForTest(t, repo)
	mock.ExpectBegin()
	mock.ExpectCommit()

	userID := uuid.New()
	existing := &models.Address{ID: uuid.New(), UserID: userID, Street: "1 Main St", City: "Springfield", State: "IL"}
	repo.put(existing)

	updated, err := svc.Update(context.Background(), existing.ID, userID, "2 Oak Ave", "Springfield", "IL")
	require.NoError(t, err)
	require.Equal(t, "2 Oak Ave", updated.Street)
	require.Len(t, repo.updated, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_UnchangedRejected(t *testing.T) {
	repo := newFakeRepo()
	svc, mock := newServiceForTest(t, repo)
	mock.ExpectBegin()
	mock.ExpectRollback()

	userID := uuid.New()
	existing := &models.Address{ID: uuid.New(), UserID: userID, Street: "1 Main St", City: "Springfield", State: "IL"}
	repo.put(existing)

	_, err := svc.Update(context.Background(), existing.ID, userID, "1 Main St", "Springfield", "IL")
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
	require.Empty(t, repo.updated)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_CollidesWithOtherAddress(t *testing.T) {
	repo := newFakeRepo()
	svc, mock := newServiceForTest(t, repo)
	mock.ExpectBegin()
	mock.ExpectRollback()

	userID := uuid.New()
	first := &models.Address{ID: uuid.New(), UserID: userID, Street: "1 Main St", City: "Springfield", State: "IL"}
	second := &models.Address{ID: uuid.New(), UserID: userID, Street: "2 Oak Ave", City: "Springfield", State: "IL"}
	repo.put(first)
	repo.put(second)

	_, err := svc.Update(context.Background(), second.ID, userID, "1 Main St", "Springfield", "IL")
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_Missing(t *testing.T) {
	repo := newFakeRepo()
	svc, mock := newServiceForTest(t, repo)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Update(context.Background(), uuid.New(), uuid.New(), "1 Main St", "Springfield", "IL")
	require.ErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_OtherUsersAddressIsNotFound(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newServiceForTest(t, repo)

	owner := uuid.New()
	existing := &models.Address{ID: uuid.New(), UserID: owner, Street: "1 Main St", City: "Springfield", State: "IL"}
	repo.put(existing)

	got, err := svc.Get(context.Background(), existing.ID, uuid.New())
	require.ErrorIs(t, err, common.ErrorNotFound)
	require.Nil(t, got)
}

func TestDelete_Missing(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newServiceForTest(t, repo)

	err := svc.Delete(context.Background(), uuid.New(), uuid.New())
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestList(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newServiceForTest(t, repo)

	userID := uuid.New()
	repo.put(&models.Address{ID: uuid.New(), UserID: userID, Street: "1 Main St"})
	repo.put(&models.Address{ID: uuid.New(), UserID: userID, Street: "2 Oak Ave"})

	got, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, got, 2)
}
