package domain

import "github.com/google/uuid"

// Pricing is attached to an Availability result when the vehicle is free.
type Pricing struct {
	NightlyRate Money
	Nights      int
	TotalPrice  Money
	Currency    string
}

// Availability is the answer to "can this vehicle be booked for these dates".
// Pricing is nil when Available is false.
type Availability struct {
	VehicleID    uuid.UUID
	Range        DateRange
	Available    bool
	Nights       int
	Conflicts    []Conflict
	CheckInTime  string
	CheckOutTime string
	Pricing      *Pricing
}
