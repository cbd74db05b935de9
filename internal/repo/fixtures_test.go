package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/motorhome-rental/internal/domain"
	"github.com/pkordes/motorhome-rental/internal/repo"
	"github.com/pkordes/motorhome-rental/testutil"
)

// newTestTx opens a transaction against the test database that is rolled
// back when the test finishes, giving free per-test isolation.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	return testutil.NewTx(t)
}

// rowQuerier is satisfied by pgx.Tx for rolled-back fixtures and by
// *pgxpool.Pool for rows that other connections must see.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertCustomer(t *testing.T, tx rowQuerier, name string) domain.Customer {
	t.Helper()
	c := domain.Customer{Name: name, Email: uuid.NewString() + "@example.com"}
	err := tx.QueryRow(context.Background(),
		`INSERT INTO customers (name, email) VALUES ($1, $2) RETURNING id, created_at`,
		c.Name, c.Email).Scan(&c.ID, &c.CreatedAt)
	require.NoError(t, err, "insert customer")
	return c
}

func insertVehicle(t *testing.T, tx rowQuerier, name string, capacity int, nightly domain.Money) domain.Vehicle {
	t.Helper()
	v := domain.Vehicle{Name: name, Capacity: capacity, NightlyPrice: nightly}
	err := tx.QueryRow(context.Background(),
		`INSERT INTO vehicles (name, capacity, nightly_price_cents) VALUES ($1, $2, $3) RETURNING id, created_at`,
		v.Name, v.Capacity, v.NightlyPrice.Cents()).Scan(&v.ID, &v.CreatedAt)
	require.NoError(t, err, "insert vehicle")
	return v
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return d
}

func bookingFixture(t *testing.T, v domain.Vehicle, c domain.Customer, start, end string) domain.Booking {
	t.Helper()
	r, err := domain.NewDateRange(day(t, start), day(t, end))
	require.NoError(t, err)
	return domain.Booking{
		VehicleID:  v.ID,
		CustomerID: c.ID,
		StartDate:  r.Start,
		EndDate:    r.End,
		Nights:     r.Nights(),
		TotalPrice: v.NightlyPrice.Mul(r.Nights()),
		Extras:     domain.Extras{ExtraIDs: []string{"bedding"}, Insurance: "basic", PaymentMethod: "card"},
		Notes:      "arriving late",
	}
}

func createBooking(t *testing.T, r repo.BookingRepo, b domain.Booking) domain.Booking {
	t.Helper()
	created, err := r.Create(context.Background(), b)
	require.NoError(t, err, "create booking %s..%s", b.StartDate.Format(domain.DateLayout), b.EndDate.Format(domain.DateLayout))
	return created
}
