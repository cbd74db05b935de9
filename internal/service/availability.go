package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/motorhome-rental/internal/domain"
	"github.com/pkordes/motorhome-rental/internal/repo"
)

// AvailabilityQuery is the input to AvailabilityService.Check.
// ExcludeBookingID is set when checking whether an existing booking could
// move to new dates; that booking is then ignored as a conflict.
type AvailabilityQuery struct {
	VehicleID        uuid.UUID
	StartDate        time.Time
	EndDate          time.Time
	ExcludeBookingID *uuid.UUID
}

// AvailabilityService answers whether a vehicle can be booked for a range and
// what it would cost. It is read-only and advisory: BookingService repeats the
// check inside its transaction.
type AvailabilityService struct {
	vehicles repo.VehicleRepo
	bookings repo.BookingRepo
	clock    Clock
	currency string
	log      *slog.Logger
	metrics  Recorder
}

// NewAvailabilityService constructs an AvailabilityService.
// A nil recorder disables metrics.
func NewAvailabilityService(vehicles repo.VehicleRepo, bookings repo.BookingRepo, clock Clock, currency string, log *slog.Logger, metrics Recorder) *AvailabilityService {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &AvailabilityService{
		vehicles: vehicles,
		bookings: bookings,
		clock:    clock,
		currency: currency,
		log:      log,
		metrics:  metrics,
	}
}

// Check validates the query, then looks for conflicting bookings and prices
// the stay when there are none.
func (s *AvailabilityService) Check(ctx context.Context, q AvailabilityQuery) (domain.Availability, error) {
	if q.VehicleID == uuid.Nil || q.StartDate.IsZero() || q.EndDate.IsZero() {
		return domain.Availability{}, domain.NewValidationError(domain.CodeMissingParameters,
			"vehicle_id, start_date and end_date are required")
	}

	dr, err := validateStay(q.StartDate, q.EndDate, s.clock.Today())
	if err != nil {
		return domain.Availability{}, err
	}

	vehicle, err := s.vehicles.GetByID(ctx, q.VehicleID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Availability{}, domain.NewNotFoundError(domain.CodeVehicleNotFound, "vehicle not found")
		}
		s.log.ErrorContext(ctx, "availability: load vehicle", "vehicle_id", q.VehicleID, "error", err)
		return domain.Availability{}, domain.NewInternalError(fmt.Errorf("service.AvailabilityService.Check: %w", err), false)
	}

	conflicts, err := s.bookings.FindConflicts(ctx, vehicle.ID, dr, q.ExcludeBookingID)
	if err != nil {
		s.log.ErrorContext(ctx, "availability: find conflicts", "vehicle_id", vehicle.ID, "error", err)
		return domain.Availability{}, domain.NewInternalError(fmt.Errorf("service.AvailabilityService.Check: %w", err), false)
	}
	if conflicts == nil {
		conflicts = []domain.Conflict{}
	}

	result := domain.Availability{
		VehicleID:    vehicle.ID,
		Range:        dr,
		Available:    len(conflicts) == 0,
		Nights:       Nights(dr),
		Conflicts:    conflicts,
		CheckInTime:  domain.CheckInTime,
		CheckOutTime: domain.CheckOutTime,
	}
	if result.Available {
		result.Pricing = &domain.Pricing{
			NightlyRate: vehicle.NightlyPrice,
			Nights:      result.Nights,
			TotalPrice:  Price(vehicle.NightlyPrice, result.Nights),
			Currency:    s.currency,
		}
	}

	s.metrics.AvailabilityChecked(result.Available)
	return result, nil
}

// validateStay builds the range and rejects stays that start before today.
func validateStay(start, end, today time.Time) (domain.DateRange, error) {
	dr, err := domain.NewDateRange(start, end)
	if err != nil {
		return domain.DateRange{}, err
	}
	if dr.Start.Before(domain.Day(today)) {
		return domain.DateRange{}, domain.NewValidationError(domain.CodeDateInPast,
			"start_date %s is in the past", dr.Start.Format(domain.DateLayout))
	}
	return dr, nil
}
