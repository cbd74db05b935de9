package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/motorhome-rental/internal/auth"
	"github.com/pkordes/motorhome-rental/internal/domain"
	"github.com/pkordes/motorhome-rental/internal/handler"
	"github.com/pkordes/motorhome-rental/internal/middleware"
	"github.com/pkordes/motorhome-rental/internal/service"
)

// Test doubles for the servicer interfaces. Set only the method fields your
// test needs.

type mockAvailability struct {
	check func(ctx context.Context, q service.AvailabilityQuery) (domain.Availability, error)
}

func (m *mockAvailability) Check(ctx context.Context, q service.AvailabilityQuery) (domain.Availability, error) {
	return m.check(ctx, q)
}

type mockBookings struct {
	create      func(ctx context.Context, in domain.NewBooking) (domain.BookingDetails, error)
	get         func(ctx context.Context, customerID, id uuid.UUID) (domain.BookingDetails, error)
	listMine    func(ctx context.Context, customerID uuid.UUID, p domain.PaginationParams) (domain.Page[domain.BookingDetails], error)
	updateNotes func(ctx context.Context, customerID, id uuid.UUID, notes string) (domain.BookingDetails, error)
}

func (m *mockBookings) Create(ctx context.Context, in domain.NewBooking) (domain.BookingDetails, error) {
	return m.create(ctx, in)
}
func (m *mockBookings) Get(ctx context.Context, customerID, id uuid.UUID) (domain.BookingDetails, error) {
	return m.get(ctx, customerID, id)
}
func (m *mockBookings) ListMine(ctx context.Context, customerID uuid.UUID, p domain.PaginationParams) (domain.Page[domain.BookingDetails], error) {
	return m.listMine(ctx, customerID, p)
}
func (m *mockBookings) UpdateNotes(ctx context.Context, customerID, id uuid.UUID, notes string) (domain.BookingDetails, error) {
	return m.updateNotes(ctx, customerID, id, notes)
}

type mockVehicles struct {
	search  func(ctx context.Context, f domain.VehicleFilter, p domain.PaginationParams) (domain.Page[domain.Vehicle], error)
	get     func(ctx context.Context, id uuid.UUID) (domain.Vehicle, error)
	options func(ctx context.Context) (domain.BookingOptions, error)
}

func (m *mockVehicles) Search(ctx context.Context, f domain.VehicleFilter, p domain.PaginationParams) (domain.Page[domain.Vehicle], error) {
	return m.search(ctx, f, p)
}
func (m *mockVehicles) Get(ctx context.Context, id uuid.UUID) (domain.Vehicle, error) {
	return m.get(ctx, id)
}
func (m *mockVehicles) Options(ctx context.Context) (domain.BookingOptions, error) {
	return m.options(ctx)
}

// compile-time checks: the mocks and the real services satisfy the interfaces.
var (
	_ handler.AvailabilityServicer = (*mockAvailability)(nil)
	_ handler.BookingServicer      = (*mockBookings)(nil)
	_ handler.VehicleServicer      = (*mockVehicles)(nil)
	_ handler.AvailabilityServicer = (*service.AvailabilityService)(nil)
	_ handler.BookingServicer      = (*service.BookingService)(nil)
	_ handler.VehicleServicer      = (*service.VehicleService)(nil)
)

// ---- helpers ---------------------------------------------------------------

const testSecret = "handler-test-secret"

var (
	testCustomerID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	testVehicleID  = uuid.MustParse("11111111-1111-1111-1111-111111111111")
)

type deps struct {
	availability *mockAvailability
	bookings     *mockBookings
	vehicles     *mockVehicles
	rateLimit    func(http.Handler) http.Handler
	metrics      http.Handler
}

// newHTTPHandler wires a Server with the given mocks into the router, behind
// the real bearer authenticator. This mirrors how main.go wires it.
func newHTTPHandler(d deps) http.Handler {
	if d.availability == nil {
		d.availability = &mockAvailability{}
	}
	if d.bookings == nil {
		d.bookings = &mockBookings{}
	}
	if d.vehicles == nil {
		d.vehicles = &mockVehicles{}
	}
	log := slog.New(slog.DiscardHandler)
	srv := handler.NewServer(d.availability, d.bookings, d.vehicles, "EUR", log)
	return handler.Handler(srv, handler.Options{
		Authenticate: middleware.NewAuthenticator(auth.NewVerifier(testSecret), log),
		RateLimit:    d.rateLimit,
		Metrics:      d.metrics,
		OpenAPI:      []byte("openapi: 3.0.3\n"),
	})
}

func bearer(t *testing.T, customerID uuid.UUID) string {
	t.Helper()
	tok, err := auth.NewVerifier(testSecret).Issue(customerID, "grace@example.com", time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// errorBody mirrors the error envelope for decoding in tests.
type errorBody struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		Retryable bool   `json:"retryable"`
		Conflicts []struct {
			BookingID     uuid.UUID `json:"booking_id"`
			StartDate     string    `json:"start_date"`
			EndDate       string    `json:"end_date"`
			CustomerName  string    `json:"customer_name"`
			CustomerEmail string    `json:"customer_email"`
		} `json:"conflicts"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func day(s string) time.Time {
	t, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func bookingFixture() domain.BookingDetails {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	return domain.BookingDetails{
		Booking: domain.Booking{
			ID:         uuid.MustParse("55555555-5555-5555-5555-555555555555"),
			VehicleID:  testVehicleID,
			CustomerID: testCustomerID,
			StartDate:  day("2025-10-19"),
			EndDate:    day("2025-10-22"),
			Nights:     3,
			TotalPrice: 26700,
			Extras:     domain.Extras{ExtraIDs: []string{"bike-rack"}, PaymentMethod: "card"},
			Notes:      "late arrival",
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		VehicleName:   "Hymer B-Class",
		CustomerName:  "Grace",
		CustomerEmail: "grace@example.com",
	}
}
