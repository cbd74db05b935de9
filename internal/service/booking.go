package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pkordes/motorhome-rental/internal/domain"
	"github.com/pkordes/motorhome-rental/internal/repo"
)

const (
	defaultTxTimeout      = 5 * time.Second
	notificationTimeout   = 30 * time.Second
	maxNotesLength        = 2000
	notifyConfirmation    = "confirmation"
	notifyCheckInReminder = "check_in_reminder"
)

// BookingOption configures a BookingService.
type BookingOption func(*BookingService)

// WithTxTimeout bounds the create-booking transaction. Non-positive values
// keep the default.
func WithTxTimeout(d time.Duration) BookingOption {
	return func(s *BookingService) {
		if d > 0 {
			s.txTimeout = d
		}
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) BookingOption {
	return func(s *BookingService) {
		if r != nil {
			s.metrics = r
		}
	}
}

// BookingService owns the booking write path and the customer's view of their
// own bookings.
type BookingService struct {
	store     repo.Store
	bookings  repo.BookingRepo
	notifier  Notifier
	clock     Clock
	log       *slog.Logger
	metrics   Recorder
	txTimeout time.Duration

	// wg tracks confirmation emails still in flight after Create returned.
	wg sync.WaitGroup
}

// NewBookingService constructs a BookingService. bookings is used for reads
// outside a transaction; writes go through store.
func NewBookingService(store repo.Store, bookings repo.BookingRepo, notifier Notifier, clock Clock, log *slog.Logger, opts ...BookingOption) *BookingService {
	s := &BookingService{
		store:     store,
		bookings:  bookings,
		notifier:  notifier,
		clock:     clock,
		log:       log,
		metrics:   nopRecorder{},
		txTimeout: defaultTxTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create books a vehicle for a customer.
//
// Auth and input checks run before a transaction is opened. Inside it the
// customer is verified, the vehicle row is locked, conflicts are re-read and
// the total is recomputed from the catalog before the insert. Any error rolls
// the transaction back. The confirmation email is sent after commit and its
// failure never fails the booking.
func (s *BookingService) Create(ctx context.Context, in domain.NewBooking) (domain.BookingDetails, error) {
	if in.CustomerID == uuid.Nil {
		return s.reject(ctx, domain.NewUnauthenticatedError())
	}

	if in.VehicleID == uuid.Nil || in.StartDate.IsZero() || in.EndDate.IsZero() {
		return s.reject(ctx, domain.NewValidationError(domain.CodeMissingRequiredFields,
			"vehicle_id, start_date and end_date are required"))
	}
	dr, err := validateStay(in.StartDate, in.EndDate, s.clock.Today())
	if err != nil {
		return s.reject(ctx, err)
	}
	nights := Nights(dr)
	if in.Nights != nil && *in.Nights != nights {
		return s.reject(ctx, domain.NewValidationError(domain.CodeInvalidDateRange,
			"nights %d does not match %s (%d nights)", *in.Nights, dr, nights))
	}
	if utf8.RuneCountInString(in.Notes) > maxNotesLength {
		return s.reject(ctx, domain.NewValidationError(domain.CodeInvalidParameters,
			"notes must be at most %d characters", maxNotesLength))
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	var created domain.BookingDetails
	err = s.store.InTx(txCtx, func(ctx context.Context, r repo.Repos) error {
		customer, err := r.Customers.GetByID(ctx, in.CustomerID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewNotFoundError(domain.CodeUserNotFound, "customer account not found")
			}
			return err
		}

		vehicle, err := r.Vehicles.GetForUpdate(ctx, in.VehicleID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewNotFoundError(domain.CodeVehicleNotFound, "vehicle not found")
			}
			return err
		}

		conflicts, err := r.Bookings.FindConflicts(ctx, vehicle.ID, dr, nil)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return domain.NewUnavailableError(conflicts)
		}

		quote, err := Quote(ctx, r.Catalog, vehicle.NightlyPrice, dr, in.Extras)
		if err != nil {
			return err
		}
		if in.TotalPrice != nil && *in.TotalPrice != quote.Total {
			return domain.NewValidationError(domain.CodePriceMismatch,
				"total_price %s does not match computed total %s", *in.TotalPrice, quote.Total)
		}

		extras := in.Extras
		extras.ExtraIDs = dedupe(extras.ExtraIDs)
		b, err := r.Bookings.Create(ctx, domain.Booking{
			VehicleID:  vehicle.ID,
			CustomerID: customer.ID,
			StartDate:  dr.Start,
			EndDate:    dr.End,
			Nights:     nights,
			TotalPrice: quote.Total,
			Extras:     extras,
			Notes:      in.Notes,
		})
		if err != nil {
			return err
		}

		created = domain.BookingDetails{
			Booking:       b,
			VehicleName:   vehicle.Name,
			CustomerName:  customer.Name,
			CustomerEmail: customer.Email,
		}
		return nil
	})
	if err != nil {
		return s.reject(ctx, s.classify(ctx, txCtx, in.VehicleID, dr, err))
	}

	s.metrics.BookingCreated()
	s.log.InfoContext(ctx, "booking created",
		"booking_id", created.ID,
		"vehicle_id", created.VehicleID,
		"customer_id", created.CustomerID,
		"range", dr.String(),
		"total_price", created.TotalPrice.String(),
	)

	s.notify(ctx, notifyConfirmation, created, s.notifier.SendBookingConfirmation)
	return created, nil
}

// classify turns a failed transaction into a domain error. Typed errors pass
// through; a constraint hit becomes an unavailability report with the
// conflicts that won; everything else is an opaque server error.
func (s *BookingService) classify(ctx, txCtx context.Context, vehicleID uuid.UUID, dr domain.DateRange, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return de
	}

	if errors.Is(err, domain.ErrOverlap) {
		conflicts, lookupErr := s.bookings.FindConflicts(ctx, vehicleID, dr, nil)
		if lookupErr != nil {
			s.log.ErrorContext(ctx, "booking: reload conflicts after overlap", "vehicle_id", vehicleID, "error", lookupErr)
		}
		return domain.NewUnavailableError(conflicts)
	}

	wrapped := fmt.Errorf("service.BookingService.Create: %w", err)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(txCtx.Err(), context.DeadlineExceeded) {
		s.log.ErrorContext(ctx, "booking: transaction timed out", "vehicle_id", vehicleID, "timeout", s.txTimeout, "error", err)
		return domain.NewInternalError(wrapped, true)
	}
	s.log.ErrorContext(ctx, "booking: transaction failed", "vehicle_id", vehicleID, "error", err)
	return domain.NewInternalError(wrapped, false)
}

func (s *BookingService) reject(ctx context.Context, err error) (domain.BookingDetails, error) {
	var de *domain.Error
	if errors.As(err, &de) {
		s.metrics.BookingRejected(de.Code)
		if de.Kind != domain.ErrInternal {
			s.log.WarnContext(ctx, "booking rejected", "code", de.Code, "message", de.Message)
		}
	}
	return domain.BookingDetails{}, err
}

// notify sends an email in the background. The request context's values are
// kept but its cancellation is not, so the send outlives the request.
func (s *BookingService) notify(ctx context.Context, kind string, b domain.BookingDetails, send func(context.Context, domain.BookingDetails) (string, error)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notificationTimeout)
		defer cancel()

		id, err := send(ctx, b)
		if err != nil {
			s.metrics.NotificationFailed(kind)
			s.log.ErrorContext(ctx, "notification failed", "kind", kind, "booking_id", b.ID, "error", err)
			return
		}
		s.log.InfoContext(ctx, "notification sent", "kind", kind, "booking_id", b.ID, "message_id", id)
	}()
}

// Wait blocks until every background notification has finished.
func (s *BookingService) Wait() {
	s.wg.Wait()
}

// Get returns one of the caller's bookings. Bookings of other customers are
// reported as not found.
func (s *BookingService) Get(ctx context.Context, customerID, id uuid.UUID) (domain.BookingDetails, error) {
	if customerID == uuid.Nil {
		return domain.BookingDetails{}, domain.NewUnauthenticatedError()
	}
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.BookingDetails{}, domain.NewNotFoundError(domain.CodeBookingNotFound, "booking not found")
		}
		return domain.BookingDetails{}, s.internal(ctx, "Get", err)
	}
	if b.CustomerID != customerID {
		return domain.BookingDetails{}, domain.NewNotFoundError(domain.CodeBookingNotFound, "booking not found")
	}
	return b, nil
}

// ListMine returns one page of the caller's bookings, newest first.
func (s *BookingService) ListMine(ctx context.Context, customerID uuid.UUID, p domain.PaginationParams) (domain.Page[domain.BookingDetails], error) {
	if customerID == uuid.Nil {
		return domain.Page[domain.BookingDetails]{}, domain.NewUnauthenticatedError()
	}
	items, total, err := s.bookings.ListByCustomer(ctx, customerID, p)
	if err != nil {
		return domain.Page[domain.BookingDetails]{}, s.internal(ctx, "ListMine", err)
	}
	if items == nil {
		items = []domain.BookingDetails{}
	}
	return domain.Page[domain.BookingDetails]{Items: items, Total: total}, nil
}

// UpdateNotes replaces the notes on one of the caller's bookings.
func (s *BookingService) UpdateNotes(ctx context.Context, customerID, id uuid.UUID, notes string) (domain.BookingDetails, error) {
	if customerID == uuid.Nil {
		return domain.BookingDetails{}, domain.NewUnauthenticatedError()
	}
	if utf8.RuneCountInString(notes) > maxNotesLength {
		return domain.BookingDetails{}, domain.NewValidationError(domain.CodeInvalidParameters,
			"notes must be at most %d characters", maxNotesLength)
	}
	b, err := s.bookings.UpdateNotes(ctx, id, customerID, notes)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.BookingDetails{}, domain.NewNotFoundError(domain.CodeBookingNotFound, "booking not found")
		}
		return domain.BookingDetails{}, s.internal(ctx, "UpdateNotes", err)
	}
	return b, nil
}

func (s *BookingService) internal(ctx context.Context, op string, err error) error {
	s.log.ErrorContext(ctx, "booking: "+op, "error", err)
	return domain.NewInternalError(fmt.Errorf("service.BookingService.%s: %w", op, err), false)
}
