package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/motorhome-rental/internal/domain"
	"github.com/pkordes/motorhome-rental/internal/repo"
	"github.com/pkordes/motorhome-rental/internal/service"
)

var (
	vehicleID  = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	customerID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

// bookingFixture wires a BookingService over in-memory doubles. Tests adjust
// the exposed mocks before calling Create.
type bookingFixture struct {
	store     *fakeStore
	vehicles  *mockVehicleRepo
	customers *mockCustomerRepo
	txBooks   *mockBookingRepo
	poolBooks *mockBookingRepo
	notifier  *mockNotifier
	recorder  *spyRecorder
	inserted  []domain.Booking
}

func newBookingFixture(existing ...domain.Booking) *bookingFixture {
	f := &bookingFixture{
		notifier: &mockNotifier{},
		recorder: &spyRecorder{},
	}
	f.vehicles = &mockVehicleRepo{
		getForUpdate: func(_ context.Context, id uuid.UUID) (domain.Vehicle, error) {
			if id != vehicleID {
				return domain.Vehicle{}, domain.ErrNotFound
			}
			return domain.Vehicle{ID: vehicleID, Name: "Hymer B-Class", NightlyPrice: 8900}, nil
		},
	}
	f.customers = &mockCustomerRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Customer, error) {
			if id != customerID {
				return domain.Customer{}, domain.ErrNotFound
			}
			return domain.Customer{ID: customerID, Name: "Grace", Email: "grace@example.com"}, nil
		},
	}
	f.txBooks = &mockBookingRepo{
		findConflicts: conflictsFrom(existing...),
		create: func(_ context.Context, b domain.Booking) (domain.Booking, error) {
			b.ID = uuid.New()
			f.inserted = append(f.inserted, b)
			return b, nil
		},
	}
	f.poolBooks = &mockBookingRepo{findConflicts: conflictsFrom(existing...)}
	f.store = &fakeStore{repos: repo.Repos{
		Vehicles:  f.vehicles,
		Customers: f.customers,
		Bookings:  f.txBooks,
		Catalog:   newMemCatalog(),
	}}
	return f
}

func (f *bookingFixture) service(opts ...service.BookingOption) *service.BookingService {
	opts = append([]service.BookingOption{service.WithRecorder(f.recorder)}, opts...)
	return service.NewBookingService(f.store, f.poolBooks, f.notifier, fixedClock(day("2025-01-01")), discardLogger(), opts...)
}

func validNewBooking() domain.NewBooking {
	return domain.NewBooking{
		CustomerID: customerID,
		VehicleID:  vehicleID,
		StartDate:  day("2025-10-19"),
		EndDate:    day("2025-10-22"),
	}
}

func requireCode(t *testing.T, err error, code domain.Code) *domain.Error {
	t.Helper()
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, code, de.Code)
	return de
}

// ---- Create: happy path ----------------------------------------------------

func TestBookingService_Create_PricesThreeNights(t *testing.T) {
	f := newBookingFixture()
	svc := f.service()

	got, err := svc.Create(context.Background(), validNewBooking())
	svc.Wait()

	require.NoError(t, err)
	assert.Equal(t, 3, got.Nights)
	assert.Equal(t, domain.Money(26700), got.TotalPrice)
	assert.Equal(t, "Hymer B-Class", got.VehicleName)
	assert.Equal(t, "Grace", got.CustomerName)
	assert.Equal(t, "grace@example.com", got.CustomerEmail)
	assert.Equal(t, 1, f.store.committed)
	assert.Equal(t, 1, f.recorder.created)
	require.Len(t, f.notifier.confirmed, 1)
	assert.Equal(t, got.ID, f.notifier.confirmed[0].ID)
}

func TestBookingService_Create_RecomputesExtras(t *testing.T) {
	f := newBookingFixture()
	svc := f.service()

	in := validNewBooking()
	in.Extras = domain.Extras{
		ExtraIDs:      []string{"bike-rack", "camping-set", "bike-rack"},
		Insurance:     "comfort",
		PaymentMethod: "paypal",
	}
	// 267.00 base + 35.00 rack + 3 x 5.00 set + 3 x 15.00 insurance + 3.50 fee
	want := domain.Money(36550)
	in.TotalPrice = &want
	nights := 3
	in.Nights = &nights

	got, err := svc.Create(context.Background(), in)
	svc.Wait()

	require.NoError(t, err)
	assert.Equal(t, want, got.TotalPrice)
	require.Len(t, f.inserted, 1)
	assert.Equal(t, []string{"bike-rack", "camping-set"}, f.inserted[0].Extras.ExtraIDs)
}

func TestBookingService_Create_NormalisesDates(t *testing.T) {
	f := newBookingFixture()
	svc := f.service()

	in := validNewBooking()
	in.StartDate = time.Date(2025, 10, 19, 17, 45, 0, 0, time.UTC)
	in.EndDate = time.Date(2025, 10, 22, 9, 0, 0, 0, time.UTC)

	_, err := svc.Create(context.Background(), in)
	svc.Wait()

	require.NoError(t, err)
	require.Len(t, f.inserted, 1)
	assert.Equal(t, day("2025-10-19"), f.inserted[0].StartDate)
	assert.Equal(t, day("2025-10-22"), f.inserted[0].EndDate)
	assert.Equal(t, 3, f.inserted[0].Nights)
}

// ---- Create: rejected before a transaction opens ----------------------------

func TestBookingService_Create_RejectedBeforeTx(t *testing.T) {
	tests := []struct {
		name string
		edit func(*domain.NewBooking)
		code domain.Code
		kind error
	}{
		{"unauthenticated", func(b *domain.NewBooking) { b.CustomerID = uuid.Nil }, domain.CodeNotAuthenticated, domain.ErrUnauthenticated},
		{"missing vehicle", func(b *domain.NewBooking) { b.VehicleID = uuid.Nil }, domain.CodeMissingRequiredFields, domain.ErrValidation},
		{"missing start", func(b *domain.NewBooking) { b.StartDate = time.Time{} }, domain.CodeMissingRequiredFields, domain.ErrValidation},
		{"missing end", func(b *domain.NewBooking) { b.EndDate = time.Time{} }, domain.CodeMissingRequiredFields, domain.ErrValidation},
		{"end before start", func(b *domain.NewBooking) { b.EndDate = day("2025-10-18") }, domain.CodeInvalidDateRange, domain.ErrValidation},
		{"zero nights", func(b *domain.NewBooking) { b.EndDate = b.StartDate }, domain.CodeInvalidDateRange, domain.ErrValidation},
		{"past start", func(b *domain.NewBooking) {
			b.StartDate, b.EndDate = day("2024-01-01"), day("2024-01-04")
		}, domain.CodeDateInPast, domain.ErrValidation},
		{"nights mismatch", func(b *domain.NewBooking) { n := 4; b.Nights = &n }, domain.CodeInvalidDateRange, domain.ErrValidation},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newBookingFixture()
			svc := f.service()

			in := validNewBooking()
			tc.edit(&in)
			_, err := svc.Create(context.Background(), in)

			requireCode(t, err, tc.code)
			assert.ErrorIs(t, err, tc.kind)
			assert.Zero(t, f.store.opened, "no transaction may be opened")
			assert.Empty(t, f.inserted)
			assert.Equal(t, []domain.Code{tc.code}, f.recorder.rejected)
		})
	}
}

func TestBookingService_Create_StartingTodayIsAllowed(t *testing.T) {
	f := newBookingFixture()
	svc := f.service()

	in := validNewBooking()
	in.StartDate, in.EndDate = day("2025-01-01"), day("2025-01-02")

	_, err := svc.Create(context.Background(), in)
	svc.Wait()

	require.NoError(t, err)
}

// ---- Create: rejected inside the transaction --------------------------------

func TestBookingService_Create_UnknownCustomer(t *testing.T) {
	f := newBookingFixture()
	svc := f.service()

	in := validNewBooking()
	in.CustomerID = uuid.New()
	_, err := svc.Create(context.Background(), in)

	requireCode(t, err, domain.CodeUserNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, f.store.rolledBack)
	assert.Empty(t, f.inserted)
}

func TestBookingService_Create_UnknownVehicle(t *testing.T) {
	f := newBookingFixture()
	svc := f.service()

	in := validNewBooking()
	in.VehicleID = uuid.New()
	_, err := svc.Create(context.Background(), in)

	requireCode(t, err, domain.CodeVehicleNotFound)
	assert.Equal(t, 1, f.store.rolledBack)
}

func TestBookingService_Create_ConflictOnRecheck(t *testing.T) {
	existing := domain.Booking{ID: uuid.New(), VehicleID: vehicleID, StartDate: day("2025-10-15"), EndDate: day("2025-10-19")}
	f := newBookingFixture(existing)
	svc := f.service()

	_, err := svc.Create(context.Background(), validNewBooking())
	svc.Wait()

	de := requireCode(t, err, domain.CodeVehicleNotAvailable)
	assert.ErrorIs(t, err, domain.ErrConflict)
	require.Len(t, de.Conflicts, 1)
	assert.Equal(t, existing.ID, de.Conflicts[0].BookingID)
	assert.Equal(t, 1, f.store.rolledBack)
	assert.Empty(t, f.inserted)
	assert.Empty(t, f.notifier.confirmed)
}

func TestBookingService_Create_PriceMismatch(t *testing.T) {
	f := newBookingFixture()
	svc := f.service()

	in := validNewBooking()
	wrong := domain.Money(100)
	in.TotalPrice = &wrong
	_, err := svc.Create(context.Background(), in)

	requireCode(t, err, domain.CodePriceMismatch)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 1, f.store.rolledBack)
	assert.Empty(t, f.inserted)
}

func TestBookingService_Create_UnknownExtra(t *testing.T) {
	f := newBookingFixture()
	svc := f.service()

	in := validNewBooking()
	in.Extras.ExtraIDs = []string{"jacuzzi"}
	_, err := svc.Create(context.Background(), in)

	requireCode(t, err, domain.CodeInvalidExtras)
	assert.Empty(t, f.inserted)
}

// A concurrent booking slipped in between the recheck and the insert; the
// store constraint rejects the insert and the winner is reported.
func TestBookingService_Create_OverlapConstraint(t *testing.T) {
	winner := domain.Booking{ID: uuid.New(), VehicleID: vehicleID, StartDate: day("2025-10-19"), EndDate: day("2025-10-22")}
	f := newBookingFixture()
	f.poolBooks.findConflicts = conflictsFrom(winner)
	f.txBooks.create = func(context.Context, domain.Booking) (domain.Booking, error) {
		return domain.Booking{}, domain.ErrOverlap
	}
	svc := f.service()

	_, err := svc.Create(context.Background(), validNewBooking())
	svc.Wait()

	de := requireCode(t, err, domain.CodeVehicleNotAvailable)
	require.Len(t, de.Conflicts, 1)
	assert.Equal(t, winner.ID, de.Conflicts[0].BookingID)
	assert.Equal(t, 1, f.store.rolledBack)
	assert.Empty(t, f.notifier.confirmed)
}

func TestBookingService_Create_PersistFailureRollsBack(t *testing.T) {
	f := newBookingFixture()
	f.txBooks.create = func(context.Context, domain.Booking) (domain.Booking, error) {
		return domain.Booking{}, errors.New("connection reset")
	}
	svc := f.service()

	_, err := svc.Create(context.Background(), validNewBooking())
	svc.Wait()

	de := requireCode(t, err, domain.CodeServerError)
	assert.False(t, de.Retryable)
	assert.ErrorIs(t, err, domain.ErrInternal)
	assert.NotContains(t, de.Message, "connection reset")
	assert.Equal(t, 1, f.store.rolledBack)
	assert.Zero(t, f.store.committed)
	assert.Empty(t, f.notifier.confirmed)
}

func TestBookingService_Create_TimeoutIsRetryable(t *testing.T) {
	f := newBookingFixture()
	f.vehicles.getForUpdate = func(ctx context.Context, _ uuid.UUID) (domain.Vehicle, error) {
		<-ctx.Done()
		return domain.Vehicle{}, ctx.Err()
	}
	svc := f.service(service.WithTxTimeout(20 * time.Millisecond))

	_, err := svc.Create(context.Background(), validNewBooking())

	de := requireCode(t, err, domain.CodeServerError)
	assert.True(t, de.Retryable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, f.store.rolledBack)
	assert.Empty(t, f.inserted)
}

// ---- Create: notification ---------------------------------------------------

func TestBookingService_Create_NotificationFailureIsNotFatal(t *testing.T) {
	f := newBookingFixture()
	f.notifier.confirmErr = errors.New("smtp down")
	svc := f.service()

	got, err := svc.Create(context.Background(), validNewBooking())
	svc.Wait()

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, 1, f.store.committed)
	assert.Equal(t, []string{"confirmation"}, f.recorder.notificationFailure)
}

func TestBookingService_Create_NotificationOutlivesRequest(t *testing.T) {
	f := newBookingFixture()
	svc := f.service()

	ctx, cancel := context.WithCancel(context.Background())
	_, err := svc.Create(ctx, validNewBooking())
	cancel()
	svc.Wait()

	require.NoError(t, err)
	assert.Len(t, f.notifier.confirmed, 1)
}

// ---- Get / ListMine / UpdateNotes --------------------------------------------

func TestBookingService_Get(t *testing.T) {
	own := domain.BookingDetails{Booking: domain.Booking{ID: uuid.New(), CustomerID: customerID}}
	other := domain.BookingDetails{Booking: domain.Booking{ID: uuid.New(), CustomerID: uuid.New()}}
	f := newBookingFixture()
	f.poolBooks.getByID = func(_ context.Context, id uuid.UUID) (domain.BookingDetails, error) {
		switch id {
		case own.ID:
			return own, nil
		case other.ID:
			return other, nil
		}
		return domain.BookingDetails{}, domain.ErrNotFound
	}
	svc := f.service()

	got, err := svc.Get(context.Background(), customerID, own.ID)
	require.NoError(t, err)
	assert.Equal(t, own.ID, got.ID)

	_, err = svc.Get(context.Background(), customerID, other.ID)
	requireCode(t, err, domain.CodeBookingNotFound)

	_, err = svc.Get(context.Background(), customerID, uuid.New())
	requireCode(t, err, domain.CodeBookingNotFound)

	_, err = svc.Get(context.Background(), uuid.Nil, own.ID)
	requireCode(t, err, domain.CodeNotAuthenticated)
}

func TestBookingService_ListMine(t *testing.T) {
	f := newBookingFixture()
	var gotParams domain.PaginationParams
	f.poolBooks.listByCustomer = func(_ context.Context, id uuid.UUID, p domain.PaginationParams) ([]domain.BookingDetails, int64, error) {
		assert.Equal(t, customerID, id)
		gotParams = p
		return nil, 0, nil
	}
	svc := f.service()

	page, err := svc.ListMine(context.Background(), customerID, domain.PaginationParams{Page: 2, Limit: 5})

	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, domain.PaginationParams{Page: 2, Limit: 5}, gotParams)
}

func TestBookingService_ListMine_RepoError(t *testing.T) {
	f := newBookingFixture()
	f.poolBooks.listByCustomer = func(context.Context, uuid.UUID, domain.PaginationParams) ([]domain.BookingDetails, int64, error) {
		return nil, 0, errors.New("boom")
	}
	svc := f.service()

	_, err := svc.ListMine(context.Background(), customerID, domain.NewPaginationParams(nil, nil))

	requireCode(t, err, domain.CodeServerError)
}

func TestBookingService_UpdateNotes(t *testing.T) {
	id := uuid.New()
	f := newBookingFixture()
	f.poolBooks.updateNotes = func(_ context.Context, gotID, owner uuid.UUID, notes string) (domain.BookingDetails, error) {
		if gotID != id || owner != customerID {
			return domain.BookingDetails{}, domain.ErrNotFound
		}
		return domain.BookingDetails{Booking: domain.Booking{ID: id, CustomerID: owner, Notes: notes}}, nil
	}
	svc := f.service()

	got, err := svc.UpdateNotes(context.Background(), customerID, id, "arriving late")
	require.NoError(t, err)
	assert.Equal(t, "arriving late", got.Notes)

	_, err = svc.UpdateNotes(context.Background(), uuid.New(), id, "x")
	requireCode(t, err, domain.CodeBookingNotFound)

	long := make([]rune, 2001)
	for i := range long {
		long[i] = 'a'
	}
	_, err = svc.UpdateNotes(context.Background(), customerID, id, string(long))
	requireCode(t, err, domain.CodeInvalidParameters)
}
