package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/motorhome-rental/internal/domain"
	"github.com/pkordes/motorhome-rental/internal/repo"
)

// VehicleService serves the read-only fleet catalog.
type VehicleService struct {
	vehicles repo.VehicleRepo
	catalog  repo.CatalogRepo
}

// NewVehicleService constructs a VehicleService.
func NewVehicleService(vehicles repo.VehicleRepo, catalog repo.CatalogRepo) *VehicleService {
	return &VehicleService{vehicles: vehicles, catalog: catalog}
}

// Search returns one page of vehicles matching filter.
func (s *VehicleService) Search(ctx context.Context, filter domain.VehicleFilter, p domain.PaginationParams) (domain.Page[domain.Vehicle], error) {
	if filter.MinCapacity < 0 {
		return domain.Page[domain.Vehicle]{}, domain.NewValidationError(domain.CodeInvalidParameters, "min_capacity must not be negative")
	}
	if filter.MaxNightlyPrice != nil && *filter.MaxNightlyPrice < 0 {
		return domain.Page[domain.Vehicle]{}, domain.NewValidationError(domain.CodeInvalidParameters, "max_price must not be negative")
	}

	items, total, err := s.vehicles.Search(ctx, filter, p)
	if err != nil {
		return domain.Page[domain.Vehicle]{}, domain.NewInternalError(fmt.Errorf("service.VehicleService.Search: %w", err), false)
	}
	if items == nil {
		items = []domain.Vehicle{}
	}
	return domain.Page[domain.Vehicle]{Items: items, Total: total}, nil
}

// Get returns a single vehicle.
func (s *VehicleService) Get(ctx context.Context, id uuid.UUID) (domain.Vehicle, error) {
	v, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Vehicle{}, domain.NewNotFoundError(domain.CodeVehicleNotFound, "vehicle not found")
		}
		return domain.Vehicle{}, domain.NewInternalError(fmt.Errorf("service.VehicleService.Get: %w", err), false)
	}
	return v, nil
}

// Options returns the extras, insurance tiers and payment methods a client
// needs to build a quote.
func (s *VehicleService) Options(ctx context.Context) (domain.BookingOptions, error) {
	opts, err := s.catalog.Options(ctx)
	if err != nil {
		return domain.BookingOptions{}, domain.NewInternalError(fmt.Errorf("service.VehicleService.Options: %w", err), false)
	}
	return opts, nil
}
