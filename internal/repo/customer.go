package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/motorhome-rental/internal/domain"
)

// CustomerRepo defines read access to customer accounts.
// Account management lives outside this service.
type CustomerRepo interface {
	// GetByID returns domain.ErrNotFound if the account does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Customer, error)
}

type pgCustomerRepo struct {
	db db
}

// NewCustomerRepo constructs a CustomerRepo backed by the provided db connection.
func NewCustomerRepo(db db) CustomerRepo {
	return &pgCustomerRepo{db: db}
}

func (r *pgCustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Customer, error) {
	const q = `SELECT id, name, email, created_at FROM customers WHERE id = @id`

	var (
		c   domain.Customer
		cid pgtype.UUID
	)
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&cid, &c.Name, &c.Email, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = domain.ErrNotFound
		}
		return domain.Customer{}, fmt.Errorf("repo.CustomerRepo.GetByID: %w", err)
	}
	c.ID = uuid.UUID(cid.Bytes)
	return c, nil
}
