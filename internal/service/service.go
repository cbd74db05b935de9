// Package service contains the business logic for the rental backend.
// Services validate inputs, enforce booking rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"time"

	"github.com/pkordes/motorhome-rental/internal/domain"
)

// Clock supplies "today" as a calendar day. Bookings may not start before it.
type Clock interface {
	Today() time.Time
}

// SystemClock reads the wall clock in Location (UTC when nil).
type SystemClock struct {
	Location *time.Location
}

// Today returns the current calendar day in the clock's location.
func (c SystemClock) Today() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return domain.Day(time.Now().In(loc))
}

// Notifier delivers booking emails. Implementations return the provider's
// message id, which is only logged.
type Notifier interface {
	SendBookingConfirmation(ctx context.Context, b domain.BookingDetails) (string, error)
	SendCheckInReminder(ctx context.Context, b domain.BookingDetails) (string, error)
}

// Recorder receives business events for metrics.
type Recorder interface {
	AvailabilityChecked(available bool)
	BookingCreated()
	BookingRejected(code domain.Code)
	NotificationFailed(kind string)
}

type nopRecorder struct{}

func (nopRecorder) AvailabilityChecked(bool)    {}
func (nopRecorder) BookingCreated()             {}
func (nopRecorder) BookingRejected(domain.Code) {}
func (nopRecorder) NotificationFailed(string)   {}
