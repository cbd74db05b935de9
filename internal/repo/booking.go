package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/motorhome-rental/internal/domain"
)

// Postgres SQLSTATE and constraint raised when two bookings of one vehicle overlap.
const (
	sqlStateExclusionViolation = "23P01"
	noOverlapConstraint        = "bookings_no_overlap"
)

// BookingRepo defines the persistence operations for Bookings.
type BookingRepo interface {
	// FindConflicts returns every booking of vehicleID whose range overlaps r,
	// treating both end dates as occupied. A non-nil exclude is skipped, so a
	// booking never conflicts with itself. Results are ordered by start date.
	FindConflicts(ctx context.Context, vehicleID uuid.UUID, r domain.DateRange, exclude *uuid.UUID) ([]domain.Conflict, error)

	// Create inserts a booking and returns the persisted row.
	// Returns domain.ErrOverlap if the insert hits the no-overlap constraint.
	Create(ctx context.Context, b domain.Booking) (domain.Booking, error)

	// GetByID returns a booking with its display fields.
	// Returns domain.ErrNotFound if no booking with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.BookingDetails, error)

	// ListByCustomer returns one page of a customer's bookings, newest first,
	// and the customer's total booking count.
	ListByCustomer(ctx context.Context, customerID uuid.UUID, p domain.PaginationParams) ([]domain.BookingDetails, int64, error)

	// ListStartingOn returns all bookings whose start date is day.
	ListStartingOn(ctx context.Context, day time.Time) ([]domain.BookingDetails, error)

	// UpdateNotes replaces the notes of a booking owned by customerID.
	// Returns domain.ErrNotFound if the booking does not exist or belongs to
	// someone else.
	UpdateNotes(ctx context.Context, id, customerID uuid.UUID, notes string) (domain.BookingDetails, error)
}

type pgBookingRepo struct {
	db db
}

// NewBookingRepo constructs a BookingRepo backed by the provided db connection.
// In production pass *pgxpool.Pool or a pgx.Tx from the Store.
func NewBookingRepo(db db) BookingRepo {
	return &pgBookingRepo{db: db}
}

const bookingColumns = `b.id, b.vehicle_id, b.customer_id, b.start_date, b.end_date, b.nights,
		b.total_price_cents, b.extras, b.notes, b.created_at, b.updated_at`

const detailsFrom = `
		FROM bookings b
		JOIN vehicles v ON v.id = b.vehicle_id
		JOIN customers c ON c.id = b.customer_id`

// FindConflicts uses "existing.start <= requested.end AND existing.end >=
// requested.start", which for ordered ranges is the same set as the
// three-way test (starts inside, ends inside, fully contained).
func (r *pgBookingRepo) FindConflicts(ctx context.Context, vehicleID uuid.UUID, dr domain.DateRange, exclude *uuid.UUID) ([]domain.Conflict, error) {
	const q = `
		SELECT b.id, b.start_date, b.end_date, c.name, c.email
		FROM bookings b
		JOIN customers c ON c.id = b.customer_id
		WHERE b.vehicle_id = @vehicle_id
		  AND b.start_date <= @end_date
		  AND b.end_date   >= @start_date
		  AND (@exclude_id::uuid IS NULL OR b.id <> @exclude_id::uuid)
		ORDER BY b.start_date, b.id`

	args := pgx.NamedArgs{
		"vehicle_id": vehicleID,
		"start_date": dr.Start,
		"end_date":   dr.End,
		"exclude_id": exclude, // nil becomes NULL
	}

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.FindConflicts: %w", err)
	}
	defer rows.Close()

	conflicts := []domain.Conflict{}
	for rows.Next() {
		var (
			c          domain.Conflict
			id         pgtype.UUID
			start, end pgtype.Date
		)
		if err := rows.Scan(&id, &start, &end, &c.CustomerName, &c.CustomerEmail); err != nil {
			return nil, fmt.Errorf("repo.BookingRepo.FindConflicts: scan: %w", err)
		}
		c.BookingID = uuid.UUID(id.Bytes)
		c.StartDate = start.Time
		c.EndDate = end.Time
		conflicts = append(conflicts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.FindConflicts: rows: %w", err)
	}
	return conflicts, nil
}

func (r *pgBookingRepo) Create(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	const q = `
		INSERT INTO bookings AS b (vehicle_id, customer_id, start_date, end_date, nights, total_price_cents, extras, notes)
		VALUES (@vehicle_id, @customer_id, @start_date, @end_date, @nights, @total_price_cents, @extras, @notes)
		RETURNING ` + bookingColumns

	extras := b.Extras
	if extras.ExtraIDs == nil {
		extras.ExtraIDs = []string{}
	}

	args := pgx.NamedArgs{
		"vehicle_id":        b.VehicleID,
		"customer_id":       b.CustomerID,
		"start_date":        b.StartDate,
		"end_date":          b.EndDate,
		"nights":            b.Nights,
		"total_price_cents": b.TotalPrice.Cents(),
		"extras":            extras,
		"notes":             b.Notes,
	}

	created, err := scanBooking(r.db.QueryRow(ctx, q, args))
	if err != nil {
		if isOverlapViolation(err) {
			err = domain.ErrOverlap
		}
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Create: %w", err)
	}
	return created, nil
}

func (r *pgBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.BookingDetails, error) {
	const q = `SELECT ` + bookingColumns + `, v.name, c.name, c.email` + detailsFrom + `
		WHERE b.id = @id`

	d, err := scanDetails(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.BookingDetails{}, fmt.Errorf("repo.BookingRepo.GetByID: %w", err)
	}
	return d, nil
}

func (r *pgBookingRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, p domain.PaginationParams) ([]domain.BookingDetails, int64, error) {
	const countQ = `SELECT count(*) FROM bookings WHERE customer_id = @customer_id`

	var total int64
	if err := r.db.QueryRow(ctx, countQ, pgx.NamedArgs{"customer_id": customerID}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.BookingRepo.ListByCustomer: count: %w", err)
	}

	const q = `SELECT ` + bookingColumns + `, v.name, c.name, c.email` + detailsFrom + `
		WHERE b.customer_id = @customer_id
		ORDER BY b.created_at DESC, b.id
		LIMIT @limit OFFSET @offset`

	list, err := r.queryDetails(ctx, q, pgx.NamedArgs{
		"customer_id": customerID,
		"limit":       p.Limit,
		"offset":      p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.BookingRepo.ListByCustomer: %w", err)
	}
	return list, total, nil
}

func (r *pgBookingRepo) ListStartingOn(ctx context.Context, day time.Time) ([]domain.BookingDetails, error) {
	const q = `SELECT ` + bookingColumns + `, v.name, c.name, c.email` + detailsFrom + `
		WHERE b.start_date = @day
		ORDER BY b.id`

	list, err := r.queryDetails(ctx, q, pgx.NamedArgs{"day": domain.Day(day)})
	if err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.ListStartingOn: %w", err)
	}
	return list, nil
}

func (r *pgBookingRepo) UpdateNotes(ctx context.Context, id, customerID uuid.UUID, notes string) (domain.BookingDetails, error) {
	const q = `
		WITH b AS (
			UPDATE bookings
			SET notes = @notes, updated_at = now()
			WHERE id = @id AND customer_id = @customer_id
			RETURNING *
		)
		SELECT ` + bookingColumns + `, v.name, c.name, c.email
		FROM b
		JOIN vehicles v ON v.id = b.vehicle_id
		JOIN customers c ON c.id = b.customer_id`

	d, err := scanDetails(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"id":          id,
		"customer_id": customerID,
		"notes":       notes,
	}))
	if err != nil {
		return domain.BookingDetails{}, fmt.Errorf("repo.BookingRepo.UpdateNotes: %w", err)
	}
	return d, nil
}

func (r *pgBookingRepo) queryDetails(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.BookingDetails, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []domain.BookingDetails{}
	for rows.Next() {
		d, err := scanDetails(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		list = append(list, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return list, nil
}

// scanBooking maps the bookingColumns projection into a domain.Booking.
func scanBooking(s scanner, extra ...any) (domain.Booking, error) {
	var (
		b                domain.Booking
		id, vid, cid     pgtype.UUID
		startRaw, endRaw pgtype.Date
		cents            int64
	)

	dest := append([]any{
		&id, &vid, &cid, &startRaw, &endRaw, &b.Nights,
		&cents, &b.Extras, &b.Notes, &b.CreatedAt, &b.UpdatedAt,
	}, extra...)

	if err := s.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Booking{}, domain.ErrNotFound
		}
		return domain.Booking{}, err
	}

	b.ID = uuid.UUID(id.Bytes)
	b.VehicleID = uuid.UUID(vid.Bytes)
	b.CustomerID = uuid.UUID(cid.Bytes)
	b.StartDate = startRaw.Time
	b.EndDate = endRaw.Time
	b.TotalPrice = domain.Money(cents)
	return b, nil
}

func scanDetails(s scanner) (domain.BookingDetails, error) {
	var d domain.BookingDetails
	b, err := scanBooking(s, &d.VehicleName, &d.CustomerName, &d.CustomerEmail)
	if err != nil {
		return domain.BookingDetails{}, err
	}
	d.Booking = b
	return d, nil
}

func isOverlapViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == sqlStateExclusionViolation &&
		pgErr.ConstraintName == noOverlapConstraint
}
