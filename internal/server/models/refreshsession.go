package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshSession is the persisted record of one issued token pair. Tokens are
// stored as SHA3-256 hex digests, never in clear. Reference is a short
// human-readable id used to correlate log lines with rows.
type RefreshSession struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	TokenDigest  string
	AccessDigest string
	UserAgent    string
	IPAddress    string
	Reference    string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}
