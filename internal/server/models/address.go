package models

import (
	"time"

	"github.com/google/uuid"
)

// Address is a shipping address owned by a single user.
type Address struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Street    string
	City      string
	State     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Same reports whether the address fields match the given values, ignoring
// identity and timestamps.
func (a *Address) Same(street, city, state string) bool {
	return a.Street == street && a.City == city && a.State == state
}
