package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer is an account that can hold bookings. The ID is the subject of
// the bearer token presented by the caller.
type Customer struct {
	ID        uuid.UUID
	Name      string
	Email     string
	CreatedAt time.Time
}
