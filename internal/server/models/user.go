package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the authenticated identity handed to the session service by the
// upstream authentication layer. Read-only here: bookmart never creates or
// mutates users.
type User struct {
	ID        uuid.UUID
	Email     string
	CreatedAt time.Time
}
