package repo

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/motorhome-rental/internal/domain"
)

// VehicleRepo defines read access to the vehicle catalog.
type VehicleRepo interface {
	// GetByID retrieves a vehicle by primary key.
	// Returns domain.ErrNotFound if no vehicle with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error)

	// GetForUpdate is GetByID plus a row lock held until the surrounding
	// transaction ends. Concurrent bookings of the same vehicle queue here.
	GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Vehicle, error)

	// Search returns one page of vehicles matching filter, cheapest first,
	// and the total number of matches.
	Search(ctx context.Context, filter domain.VehicleFilter, p domain.PaginationParams) ([]domain.Vehicle, int64, error)
}

// psql builds Postgres-flavoured ($1, $2, ...) statements.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const vehicleColumns = `id, name, description, capacity, nightly_price_cents, created_at`

// pgVehicleRepo is the Postgres implementation of VehicleRepo.
type pgVehicleRepo struct {
	db db
}

// NewVehicleRepo constructs a VehicleRepo backed by the provided db connection.
func NewVehicleRepo(db db) VehicleRepo {
	return &pgVehicleRepo{db: db}
}

func (r *pgVehicleRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error) {
	q := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = @id`

	v, err := scanVehicle(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("repo.VehicleRepo.GetByID: %w", err)
	}
	return v, nil
}

func (r *pgVehicleRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Vehicle, error) {
	q := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = @id FOR UPDATE`

	v, err := scanVehicle(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("repo.VehicleRepo.GetForUpdate: %w", err)
	}
	return v, nil
}

// Search builds its WHERE clause dynamically because every filter is optional.
func (r *pgVehicleRepo) Search(ctx context.Context, filter domain.VehicleFilter, p domain.PaginationParams) ([]domain.Vehicle, int64, error) {
	where := sq.And{}
	if filter.MinCapacity > 0 {
		where = append(where, sq.GtOrEq{"capacity": filter.MinCapacity})
	}
	if filter.MaxNightlyPrice != nil {
		where = append(where, sq.LtOrEq{"nightly_price_cents": filter.MaxNightlyPrice.Cents()})
	}

	countSQL, countArgs, err := psql.Select("count(*)").From("vehicles").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("repo.VehicleRepo.Search: build count: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.VehicleRepo.Search: count: %w", err)
	}

	listSQL, listArgs, err := psql.Select(vehicleColumns).
		From("vehicles").
		Where(where).
		OrderBy("nightly_price_cents", "name", "id").
		Limit(uint64(p.Limit)).
		Offset(uint64(p.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("repo.VehicleRepo.Search: build list: %w", err)
	}

	rows, err := r.db.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.VehicleRepo.Search: %w", err)
	}
	defer rows.Close()

	vehicles := []domain.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.VehicleRepo.Search: scan: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.VehicleRepo.Search: rows: %w", err)
	}
	return vehicles, total, nil
}

func scanVehicle(s scanner) (domain.Vehicle, error) {
	var (
		v     domain.Vehicle
		id    pgtype.UUID
		cents int64
	)
	err := s.Scan(&id, &v.Name, &v.Description, &v.Capacity, &cents, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Vehicle{}, domain.ErrNotFound
		}
		return domain.Vehicle{}, err
	}
	v.ID = uuid.UUID(id.Bytes)
	v.NightlyPrice = domain.Money(cents)
	return v, nil
}
