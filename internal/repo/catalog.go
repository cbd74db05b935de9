package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/motorhome-rental/internal/domain"
)

// CatalogRepo reads the priced add-on tables (extras, insurance, payment methods).
type CatalogRepo interface {
	// Options returns the complete add-on catalog ordered by id.
	Options(ctx context.Context) (domain.BookingOptions, error)

	// ExtrasByIDs returns the extras whose id is in ids. Unknown ids are
	// silently absent from the result; callers compare lengths.
	ExtrasByIDs(ctx context.Context, ids []string) ([]domain.Extra, error)

	// InsuranceByID returns domain.ErrNotFound for an unknown tier.
	InsuranceByID(ctx context.Context, id string) (domain.InsuranceOption, error)

	// PaymentMethodByID returns domain.ErrNotFound for an unknown method.
	PaymentMethodByID(ctx context.Context, id string) (domain.PaymentMethod, error)
}

type pgCatalogRepo struct {
	db db
}

// NewCatalogRepo constructs a CatalogRepo backed by the provided db connection.
func NewCatalogRepo(db db) CatalogRepo {
	return &pgCatalogRepo{db: db}
}

func (r *pgCatalogRepo) Options(ctx context.Context) (domain.BookingOptions, error) {
	extras, err := r.queryExtras(ctx, `SELECT id, name, price_cents, per_night FROM extras ORDER BY id`, nil)
	if err != nil {
		return domain.BookingOptions{}, fmt.Errorf("repo.CatalogRepo.Options: extras: %w", err)
	}

	opts := domain.BookingOptions{
		Extras:         extras,
		Insurance:      []domain.InsuranceOption{},
		PaymentMethods: []domain.PaymentMethod{},
	}

	rows, err := r.db.Query(ctx, `SELECT id, name, price_per_night_cents FROM insurance_options ORDER BY id`)
	if err != nil {
		return domain.BookingOptions{}, fmt.Errorf("repo.CatalogRepo.Options: insurance: %w", err)
	}
	for rows.Next() {
		var (
			o     domain.InsuranceOption
			cents int64
		)
		if err := rows.Scan(&o.ID, &o.Name, &cents); err != nil {
			rows.Close()
			return domain.BookingOptions{}, fmt.Errorf("repo.CatalogRepo.Options: scan insurance: %w", err)
		}
		o.PricePerNight = domain.Money(cents)
		opts.Insurance = append(opts.Insurance, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return domain.BookingOptions{}, fmt.Errorf("repo.CatalogRepo.Options: insurance rows: %w", err)
	}

	rows, err = r.db.Query(ctx, `SELECT id, name, fee_cents FROM payment_methods ORDER BY id`)
	if err != nil {
		return domain.BookingOptions{}, fmt.Errorf("repo.CatalogRepo.Options: payment methods: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			m     domain.PaymentMethod
			cents int64
		)
		if err := rows.Scan(&m.ID, &m.Name, &cents); err != nil {
			return domain.BookingOptions{}, fmt.Errorf("repo.CatalogRepo.Options: scan payment method: %w", err)
		}
		m.Fee = domain.Money(cents)
		opts.PaymentMethods = append(opts.PaymentMethods, m)
	}
	if err := rows.Err(); err != nil {
		return domain.BookingOptions{}, fmt.Errorf("repo.CatalogRepo.Options: payment method rows: %w", err)
	}
	return opts, nil
}

func (r *pgCatalogRepo) ExtrasByIDs(ctx context.Context, ids []string) ([]domain.Extra, error) {
	if len(ids) == 0 {
		return []domain.Extra{}, nil
	}
	const q = `
		SELECT id, name, price_cents, per_night
		FROM extras
		WHERE id = ANY(@ids)
		ORDER BY id`

	extras, err := r.queryExtras(ctx, q, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("repo.CatalogRepo.ExtrasByIDs: %w", err)
	}
	return extras, nil
}

func (r *pgCatalogRepo) InsuranceByID(ctx context.Context, id string) (domain.InsuranceOption, error) {
	const q = `SELECT id, name, price_per_night_cents FROM insurance_options WHERE id = @id`

	var (
		o     domain.InsuranceOption
		cents int64
	)
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&o.ID, &o.Name, &cents)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = domain.ErrNotFound
		}
		return domain.InsuranceOption{}, fmt.Errorf("repo.CatalogRepo.InsuranceByID: %w", err)
	}
	o.PricePerNight = domain.Money(cents)
	return o, nil
}

func (r *pgCatalogRepo) PaymentMethodByID(ctx context.Context, id string) (domain.PaymentMethod, error) {
	const q = `SELECT id, name, fee_cents FROM payment_methods WHERE id = @id`

	var (
		m     domain.PaymentMethod
		cents int64
	)
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&m.ID, &m.Name, &cents)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = domain.ErrNotFound
		}
		return domain.PaymentMethod{}, fmt.Errorf("repo.CatalogRepo.PaymentMethodByID: %w", err)
	}
	m.Fee = domain.Money(cents)
	return m, nil
}

func (r *pgCatalogRepo) queryExtras(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Extra, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if args == nil {
		rows, err = r.db.Query(ctx, q)
	} else {
		rows, err = r.db.Query(ctx, q, args)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	extras := []domain.Extra{}
	for rows.Next() {
		var (
			e     domain.Extra
			cents int64
		)
		if err := rows.Scan(&e.ID, &e.Name, &cents, &e.PerNight); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		e.Price = domain.Money(cents)
		extras = append(extras, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return extras, nil
}
