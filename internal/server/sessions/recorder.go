package sessions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mkazmer/bookmart/internal/logging"
	"github.com/mkazmer/bookmart/internal/server/models"
	"github.com/mkazmer/bookmart/internal/server/repositories/refreshsessions"
)

// persistTimeout bounds a single background write so a stuck database cannot
// pin the worker forever.
const persistTimeout = 5 * time.Second

// Record is one pending refresh-session write: the exact pair just issued,
// the user it belongs to, and the request context it is bound to.
type Record struct {
	UserID    uuid.UUID
	Context   models.RequestContext
	Pair      models.TokenPair
	Reference string
}

// Recorder persists session records off the request path. Submissions are
// fire-and-forget: the response carrying the cookies is written without
// waiting for durability, and write failures are logged, never retried or
// surfaced to the client.
type Recorder struct {
	store  refreshsessions.Repository
	ttl    time.Duration
	queue  chan Record
	logger logging.Logger
}

func NewRecorder(store refreshsessions.Repository, refreshTTL time.Duration, queueSize int, logger logging.Logger) *Recorder {
	return &Recorder{
		store:  store,
		ttl:    refreshTTL,
		queue:  make(chan Record, queueSize),
		logger: logger.With("module", "session_recorder"),
	}
}

// Submit hands a record to the background writer. It never blocks the request
// path: when the queue is full the record is dropped and logged, leaving the
// issued tokens valid without a durability record.
func (r *Recorder) Submit(rec Record) {
	select {
	case r.queue <- rec:
	default:
		r.logger.Error(context.Background(), "session record queue full, dropping record",
			"reference", rec.Reference, "user_id", rec.UserID.String())
	}
}

// Run consumes the queue until ctx is cancelled, then drains whatever is
// still buffered before returning. The caller decides when pending records
// must have landed (e.g. before closing the database).
func (r *Recorder) Run(ctx context.Context) {
	for {
		select {
		case rec := <-r.queue:
			r.persist(rec)
		case <-ctx.Done():
			r.drain()
			return
		}
	}
}

func (r *Recorder) drain() {
	for {
		select {
		case rec := <-r.queue:
			r.persist(rec)
		default:
			return
		}
	}
}

func (r *Recorder) persist(rec Record) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := r.store.Create(ctx, rec.UserID, rec.Context, rec.Pair, r.ttl, rec.Reference); err != nil {
		r.logger.Error(ctx, "failed to persist refresh session",
			"reference", rec.Reference, "user_id", rec.UserID.String(), "error", err.Error())
	}
}
