// Package domain contains the core data types for the motorhome rental backend.
// This package has no infrastructure dependencies and is imported by every
// other internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vehicle is a rentable motorhome. It is read-only for the booking core:
// only its existence and nightly price matter when booking.
type Vehicle struct {
	ID           uuid.UUID
	Name         string
	Description  string
	Capacity     int
	NightlyPrice Money
	CreatedAt    time.Time
}

// VehicleFilter narrows a vehicle search. A zero MinCapacity and a nil
// MaxNightlyPrice mean "no constraint"; a zero price cap is a real cap.
type VehicleFilter struct {
	MinCapacity     int
	MaxNightlyPrice *Money
}
