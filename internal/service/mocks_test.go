package service_test

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/motorhome-rental/internal/domain"
	"github.com/pkordes/motorhome-rental/internal/repo"
	"github.com/pkordes/motorhome-rental/internal/service"
)

// Hand-written test doubles. Each method is a function field; set only the
// ones a test needs. Calling an unset one panics, which fails the test loudly.

type mockVehicleRepo struct {
	getByID      func(ctx context.Context, id uuid.UUID) (domain.Vehicle, error)
	getForUpdate func(ctx context.Context, id uuid.UUID) (domain.Vehicle, error)
	search       func(ctx context.Context, f domain.VehicleFilter, p domain.PaginationParams) ([]domain.Vehicle, int64, error)
}

func (m *mockVehicleRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error) {
	return m.getByID(ctx, id)
}
func (m *mockVehicleRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Vehicle, error) {
	return m.getForUpdate(ctx, id)
}
func (m *mockVehicleRepo) Search(ctx context.Context, f domain.VehicleFilter, p domain.PaginationParams) ([]domain.Vehicle, int64, error) {
	return m.search(ctx, f, p)
}

type mockCustomerRepo struct {
	getByID func(ctx context.Context, id uuid.UUID) (domain.Customer, error)
}

func (m *mockCustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Customer, error) {
	return m.getByID(ctx, id)
}

type mockBookingRepo struct {
	findConflicts  func(ctx context.Context, vehicleID uuid.UUID, r domain.DateRange, exclude *uuid.UUID) ([]domain.Conflict, error)
	create         func(ctx context.Context, b domain.Booking) (domain.Booking, error)
	getByID        func(ctx context.Context, id uuid.UUID) (domain.BookingDetails, error)
	listByCustomer func(ctx context.Context, customerID uuid.UUID, p domain.PaginationParams) ([]domain.BookingDetails, int64, error)
	listStartingOn func(ctx context.Context, day time.Time) ([]domain.BookingDetails, error)
	updateNotes    func(ctx context.Context, id, customerID uuid.UUID, notes string) (domain.BookingDetails, error)
}

func (m *mockBookingRepo) FindConflicts(ctx context.Context, vehicleID uuid.UUID, r domain.DateRange, exclude *uuid.UUID) ([]domain.Conflict, error) {
	return m.findConflicts(ctx, vehicleID, r, exclude)
}
func (m *mockBookingRepo) Create(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	return m.create(ctx, b)
}
func (m *mockBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.BookingDetails, error) {
	return m.getByID(ctx, id)
}
func (m *mockBookingRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, p domain.PaginationParams) ([]domain.BookingDetails, int64, error) {
	return m.listByCustomer(ctx, customerID, p)
}
func (m *mockBookingRepo) ListStartingOn(ctx context.Context, day time.Time) ([]domain.BookingDetails, error) {
	return m.listStartingOn(ctx, day)
}
func (m *mockBookingRepo) UpdateNotes(ctx context.Context, id, customerID uuid.UUID, notes string) (domain.BookingDetails, error) {
	return m.updateNotes(ctx, id, customerID, notes)
}

// memCatalog is a map-backed CatalogRepo holding the seeded options.
type memCatalog struct {
	extras    map[string]domain.Extra
	insurance map[string]domain.InsuranceOption
	payments  map[string]domain.PaymentMethod
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		extras: map[string]domain.Extra{
			"bike-rack":   {ID: "bike-rack", Name: "Bike rack", Price: 3500},
			"camping-set": {ID: "camping-set", Name: "Camping set", Price: 500, PerNight: true},
		},
		insurance: map[string]domain.InsuranceOption{
			"basic":   {ID: "basic", Name: "Basic", PricePerNight: 0},
			"comfort": {ID: "comfort", Name: "Comfort", PricePerNight: 1500},
		},
		payments: map[string]domain.PaymentMethod{
			"card":   {ID: "card", Name: "Card", Fee: 0},
			"paypal": {ID: "paypal", Name: "PayPal", Fee: 350},
		},
	}
}

func (c *memCatalog) Options(context.Context) (domain.BookingOptions, error) {
	var o domain.BookingOptions
	for _, e := range c.extras {
		o.Extras = append(o.Extras, e)
	}
	for _, i := range c.insurance {
		o.Insurance = append(o.Insurance, i)
	}
	for _, p := range c.payments {
		o.PaymentMethods = append(o.PaymentMethods, p)
	}
	return o, nil
}

func (c *memCatalog) ExtrasByIDs(_ context.Context, ids []string) ([]domain.Extra, error) {
	out := []domain.Extra{}
	for _, id := range ids {
		if e, ok := c.extras[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (c *memCatalog) InsuranceByID(_ context.Context, id string) (domain.InsuranceOption, error) {
	i, ok := c.insurance[id]
	if !ok {
		return domain.InsuranceOption{}, domain.ErrNotFound
	}
	return i, nil
}

func (c *memCatalog) PaymentMethodByID(_ context.Context, id string) (domain.PaymentMethod, error) {
	p, ok := c.payments[id]
	if !ok {
		return domain.PaymentMethod{}, domain.ErrNotFound
	}
	return p, nil
}

// fakeStore runs fn against fixed repos and records how each unit of work ended.
type fakeStore struct {
	repos      repo.Repos
	opened     int
	committed  int
	rolledBack int
}

func (s *fakeStore) InTx(ctx context.Context, fn func(ctx context.Context, r repo.Repos) error) error {
	s.opened++
	if err := fn(ctx, s.repos); err != nil {
		s.rolledBack++
		return err
	}
	if err := ctx.Err(); err != nil {
		s.rolledBack++
		return err
	}
	s.committed++
	return nil
}

type mockNotifier struct {
	mu           sync.Mutex
	confirmed    []domain.BookingDetails
	reminded     []domain.BookingDetails
	confirmErr   error
	reminderErrs map[uuid.UUID]error
}

func (n *mockNotifier) SendBookingConfirmation(_ context.Context, b domain.BookingDetails) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.confirmErr != nil {
		return "", n.confirmErr
	}
	n.confirmed = append(n.confirmed, b)
	return "msg-" + b.ID.String(), nil
}

func (n *mockNotifier) SendCheckInReminder(_ context.Context, b domain.BookingDetails) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.reminderErrs[b.ID]; err != nil {
		return "", err
	}
	n.reminded = append(n.reminded, b)
	return "msg-" + b.ID.String(), nil
}

type spyRecorder struct {
	mu                  sync.Mutex
	availabilityChecks  []bool
	created             int
	rejected            []domain.Code
	notificationFailure []string
}

func (r *spyRecorder) AvailabilityChecked(available bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.availabilityChecks = append(r.availabilityChecks, available)
}

func (r *spyRecorder) BookingCreated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created++
}

func (r *spyRecorder) BookingRejected(code domain.Code) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected = append(r.rejected, code)
}

func (r *spyRecorder) NotificationFailed(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notificationFailure = append(r.notificationFailure, kind)
}

type fixedClock time.Time

func (c fixedClock) Today() time.Time { return domain.Day(time.Time(c)) }

var (
	_ repo.VehicleRepo  = (*mockVehicleRepo)(nil)
	_ repo.CustomerRepo = (*mockCustomerRepo)(nil)
	_ repo.BookingRepo  = (*mockBookingRepo)(nil)
	_ repo.CatalogRepo  = (*memCatalog)(nil)
	_ repo.Store        = (*fakeStore)(nil)
	_ service.Notifier  = (*mockNotifier)(nil)
	_ service.Recorder  = (*spyRecorder)(nil)
	_ service.Clock     = fixedClock{}
)

// ---- helpers ---------------------------------------------------------------

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func day(s string) time.Time {
	t, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func mustRange(start, end string) domain.DateRange {
	r, err := domain.NewDateRange(day(start), day(end))
	if err != nil {
		panic(err)
	}
	return r
}

// conflictsFrom answers FindConflicts from an in-memory booking list using
// the domain overlap rule.
func conflictsFrom(existing ...domain.Booking) func(context.Context, uuid.UUID, domain.DateRange, *uuid.UUID) ([]domain.Conflict, error) {
	return func(_ context.Context, vehicleID uuid.UUID, r domain.DateRange, exclude *uuid.UUID) ([]domain.Conflict, error) {
		out := []domain.Conflict{}
		for _, b := range existing {
			if b.VehicleID != vehicleID || (exclude != nil && b.ID == *exclude) {
				continue
			}
			if b.Range().Overlaps(r) {
				out = append(out, domain.Conflict{
					BookingID:     b.ID,
					StartDate:     b.StartDate,
					EndDate:       b.EndDate,
					CustomerName:  "Ada",
					CustomerEmail: "ada@example.com",
				})
			}
		}
		return out, nil
	}
}
