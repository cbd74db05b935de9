package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pkordes/motorhome-rental/internal/domain"
	"github.com/pkordes/motorhome-rental/internal/repo"
)

// Nights is the number of nights in r, counted in calendar days.
func Nights(r domain.DateRange) int {
	return r.Nights()
}

// Price is the base rental price: nightly rate times nights. Money is held in
// cents, so the result is already rounded to two decimals.
func Price(rate domain.Money, nights int) domain.Money {
	return rate.Mul(nights)
}

// Quote computes the authoritative total for a booking: base price plus
// extras, insurance and payment fee, all read from the catalog. Unknown
// option ids are a CodeInvalidExtras validation error.
func Quote(ctx context.Context, catalog repo.CatalogRepo, rate domain.Money, r domain.DateRange, extras domain.Extras) (domain.Quote, error) {
	nights := Nights(r)
	q := domain.Quote{
		Nights:      nights,
		NightlyRate: rate,
		Base:        Price(rate, nights),
		Lines:       []domain.QuoteLine{},
	}
	q.Total = q.Base

	ids := dedupe(extras.ExtraIDs)
	if len(ids) > 0 {
		found, err := catalog.ExtrasByIDs(ctx, ids)
		if err != nil {
			return domain.Quote{}, fmt.Errorf("service.Quote: %w", err)
		}
		if len(found) != len(ids) {
			return domain.Quote{}, domain.NewValidationError(domain.CodeInvalidExtras, "unknown extra in %v", missingIDs(ids, found))
		}
		for _, e := range found {
			amount := e.Price
			if e.PerNight {
				amount = e.Price.Mul(nights)
			}
			q.Add(e.Name, amount)
		}
	}

	if extras.Insurance != "" {
		ins, err := catalog.InsuranceByID(ctx, extras.Insurance)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.Quote{}, domain.NewValidationError(domain.CodeInvalidExtras, "unknown insurance %q", extras.Insurance)
			}
			return domain.Quote{}, fmt.Errorf("service.Quote: %w", err)
		}
		q.Add(ins.Name, ins.PricePerNight.Mul(nights))
	}

	if extras.PaymentMethod != "" {
		pm, err := catalog.PaymentMethodByID(ctx, extras.PaymentMethod)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.Quote{}, domain.NewValidationError(domain.CodeInvalidExtras, "unknown payment method %q", extras.PaymentMethod)
			}
			return domain.Quote{}, fmt.Errorf("service.Quote: %w", err)
		}
		q.Add(pm.Name, pm.Fee)
	}

	return q, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func missingIDs(want []string, found []domain.Extra) []string {
	have := make(map[string]bool, len(found))
	for _, e := range found {
		have[e.ID] = true
	}
	var missing []string
	for _, id := range want {
		if !have[id] {
			missing = append(missing, id)
		}
	}
	return missing
}
