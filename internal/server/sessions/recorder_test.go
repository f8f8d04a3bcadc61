package sessions

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mkazmer/bookmart/internal/logging"
	"github.com/mkazmer/bookmart/internal/server/models"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	fakeStore
	mu        sync.Mutex
	createErr error
	attempts  int
}

func (c *countingStore) Create(ctx context.Context, userID uuid.UUID, reqCtx models.RequestContext, pair models.TokenPair, validity time.Duration, reference string) error {
	c.mu.Lock()
	c.attempts++
	c.mu.Unlock()
	if c.createErr != nil {
		return c.createErr
	}
	return c.fakeStore.Create(ctx, userID, reqCtx, pair, validity, reference)
}

func TestRecorder_DrainsQueueOnShutdown(t *testing.T) {
	store := &countingStore{}
	rec := NewRecorder(store, time.Hour, 16, logging.NewJSONLogger(bytes.NewBuffer(nil)))

	for i := 0; i < 3; i++ {
		rec.Submit(Record{UserID: uuid.New()})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.Run(ctx)

	require.Len(t, store.calls(), 3, "all buffered records must land before Run returns")
}

func TestRecorder_DropsWhenQueueFull(t *testing.T) {
	var buf bytes.Buffer
	store := &countingStore{}
	rec := NewRecorder(store, time.Hour, 1, logging.NewJSONLogger(&buf))

	rec.Submit(Record{UserID: uuid.New(), Reference: "SES-KEEP"})
	rec.Submit(Record{UserID: uuid.New(), Reference: "SES-DROP"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.Run(ctx)

	require.Len(t, store.calls(), 1, "overflow records are dropped, not blocked on")
	require.Contains(t, buf.String(), "queue full")
	require.Contains(t, buf.String(), "SES-DROP")
}

func TestRecorder_LogsAndSwallowsPersistErrors(t *testing.T) {
	var buf bytes.Buffer
	store := &countingStore{createErr: errors.New("db down")}
	rec := NewRecorder(store, time.Hour, 16, logging.NewJSONLogger(&buf))

	rec.Submit(Record{UserID: uuid.New(), Reference: "SES-ERR"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.Run(ctx)

	store.mu.Lock()
	attempts := store.attempts
	store.mu.Unlock()
	require.Equal(t, 1, attempts)
	require.Contains(t, buf.String(), "failed to persist refresh session")
	require.Contains(t, buf.String(), "SES-ERR")
}
