package domain

import (
	"time"

	"github.com/google/uuid"
)

// Booking is a committed rental of one vehicle for a calendar-day range.
// Bookings are never deleted; only Notes may change after creation.
type Booking struct {
	ID         uuid.UUID
	VehicleID  uuid.UUID
	CustomerID uuid.UUID
	StartDate  time.Time
	EndDate    time.Time
	Nights     int
	TotalPrice Money
	Extras     Extras
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Range returns the booking's dates as a DateRange.
func (b Booking) Range() DateRange {
	return DateRange{Start: Day(b.StartDate), End: Day(b.EndDate)}
}

// Extras is the add-on selection stored with a booking as JSON.
type Extras struct {
	ExtraIDs      []string `json:"extra_ids"`
	Insurance     string   `json:"insurance,omitempty"`
	PaymentMethod string   `json:"payment_method,omitempty"`
}

// BookingDetails is a booking enriched with vehicle and customer display
// fields, as returned to clients and handed to the notifier.
type BookingDetails struct {
	Booking
	VehicleName   string
	CustomerName  string
	CustomerEmail string
}

// Conflict is an existing booking that overlaps a requested range, carrying
// the requester's name and email for display.
type Conflict struct {
	BookingID     uuid.UUID
	StartDate     time.Time
	EndDate       time.Time
	CustomerName  string
	CustomerEmail string
}

// NewBooking is the validated input to BookingService.Create.
// TotalPrice and Nights are the client's own figures; nil means "not sent".
type NewBooking struct {
	CustomerID uuid.UUID
	VehicleID  uuid.UUID
	StartDate  time.Time
	EndDate    time.Time
	Extras     Extras
	TotalPrice *Money
	Nights     *int
	Notes      string
}
