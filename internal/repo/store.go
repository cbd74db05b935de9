package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Repos bundles every repository bound to the same connection or transaction.
type Repos struct {
	Vehicles  VehicleRepo
	Customers CustomerRepo
	Bookings  BookingRepo
	Catalog   CatalogRepo
}

// NewRepos builds all repositories on top of db.
// In production pass *pgxpool.Pool; inside a transaction pass the pgx.Tx.
func NewRepos(db db) Repos {
	return Repos{
		Vehicles:  NewVehicleRepo(db),
		Customers: NewCustomerRepo(db),
		Bookings:  NewBookingRepo(db),
		Catalog:   NewCatalogRepo(db),
	}
}

// Store runs units of work inside a database transaction.
type Store interface {
	// InTx begins a transaction, calls fn with repos bound to it, and commits
	// if fn returns nil. Any error or panic from fn, and any commit failure,
	// rolls the transaction back. A transaction is never shared between calls.
	InTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}

// beginner is satisfied by *pgxpool.Pool and pgx.Tx (which opens a savepoint).
type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type pgStore struct {
	db beginner
}

// NewStore constructs a Store backed by the provided pool.
// Tests may pass a pgx.Tx so that nested work is rolled back with the test.
func NewStore(db beginner) Store {
	return &pgStore{db: db}
}

func (s *pgStore) InTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.Store.InTx: begin: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		// The caller's context may already be past its deadline; rollback
		// must still reach the server.
		_ = tx.Rollback(context.WithoutCancel(ctx))
	}()

	if err := fn(ctx, NewRepos(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.Store.InTx: commit: %w", err)
	}
	committed = true
	return nil
}
