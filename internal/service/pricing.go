package service

import (
	"context"
	"fmt"

	"vetpos/internal/dto"
	"vetpos/internal/model"
	"vetpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ResolvedItem is a catalog hit: the tagged kind plus the list price. The
// membership discount is applied later by UnitPrice, never stored here.
type ResolvedItem struct {
	Kind         string
	RefID        uuid.UUID
	Name         string
	CatalogPrice decimal.Decimal
}

// PricingResolver maps item references to unit prices. Side-effect free; safe
// to call repeatedly and concurrently.
type PricingResolver interface {
	// Resolve dispatches on the tagged kind supplied by the caller.
	Resolve(ctx context.Context, ref dto.ItemRef) (*ResolvedItem, error)
	// ResolveByID scans the catalogs in fixed precedence order
	// (retail product, medical service, vaccination plan, vaccine) for callers
	// that only hold a bare id. Relies on item-id spaces being disjoint.
	ResolveByID(ctx context.Context, id uuid.UUID) (*ResolvedItem, error)
	// UnitPrice returns the customer-facing unit price. Vaccination plans are
	// the ONLY kind discounted by membership rank; the price is floored to the
	// whole currency unit. All other kinds return the catalog price unchanged.
	UnitPrice(ctx context.Context, item *ResolvedItem, customerID *uuid.UUID) (decimal.Decimal, error)
}

type pricingResolver struct {
	catalog   repository.CatalogRepository
	customers repository.CustomerRepository
	ranks     repository.RankRepository
}

func NewPricingResolver(
	catalog repository.CatalogRepository,
	customers repository.CustomerRepository,
	ranks repository.RankRepository,
) PricingResolver {
	return &pricingResolver{catalog: catalog, customers: customers, ranks: ranks}
}

func (p *pricingResolver) Resolve(ctx context.Context, ref dto.ItemRef) (*ResolvedItem, error) {
	id, err := uuid.Parse(ref.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid item id %q: %w", ref.ID, err)
	}

	switch ref.Kind {
	case model.ItemRetailProduct:
		prod, err := p.catalog.FindRetailProduct(ctx, id)
		if err != nil {
			return nil, ErrItemRefNotFound
		}
		return &ResolvedItem{Kind: ref.Kind, RefID: id, Name: prod.Name, CatalogPrice: prod.Price}, nil
	case model.ItemMedicalService:
		svc, err := p.catalog.FindMedicalService(ctx, id)
		if err != nil {
			return nil, ErrItemRefNotFound
		}
		return &ResolvedItem{Kind: ref.Kind, RefID: id, Name: svc.Name, CatalogPrice: svc.Price}, nil
	case model.ItemVaccinationPlan:
		plan, err := p.catalog.FindVaccinationPlan(ctx, id)
		if err != nil {
			return nil, ErrItemRefNotFound
		}
		return &ResolvedItem{Kind: ref.Kind, RefID: id, Name: plan.Name, CatalogPrice: plan.Price}, nil
	case model.ItemVaccineDose:
		vac, err := p.catalog.FindVaccine(ctx, id)
		if err != nil {
			return nil, ErrItemRefNotFound
		}
		return &ResolvedItem{Kind: ref.Kind, RefID: id, Name: vac.Name, CatalogPrice: vac.Price}, nil
	default:
		return nil, fmt.Errorf("unknown item kind %q", ref.Kind)
	}
}

func (p *pricingResolver) ResolveByID(ctx context.Context, id uuid.UUID) (*ResolvedItem, error) {
	if prod, err := p.catalog.FindRetailProduct(ctx, id); err == nil {
		return &ResolvedItem{Kind: model.ItemRetailProduct, RefID: id, Name: prod.Name, CatalogPrice: prod.Price}, nil
	}
	if svc, err := p.catalog.FindMedicalService(ctx, id); err == nil {
		return &ResolvedItem{Kind: model.ItemMedicalService, RefID: id, Name: svc.Name, CatalogPrice: svc.Price}, nil
	}
	if plan, err := p.catalog.FindVaccinationPlan(ctx, id); err == nil {
		return &ResolvedItem{Kind: model.ItemVaccinationPlan, RefID: id, Name: plan.Name, CatalogPrice: plan.Price}, nil
	}
	if vac, err := p.catalog.FindVaccine(ctx, id); err == nil {
		return &ResolvedItem{Kind: model.ItemVaccineDose, RefID: id, Name: vac.Name, CatalogPrice: vac.Price}, nil
	}
	return nil, ErrItemRefNotFound
}

func (p *pricingResolver) UnitPrice(ctx context.Context, item *ResolvedItem, customerID *uuid.UUID) (decimal.Decimal, error) {
	if item.Kind != model.ItemVaccinationPlan || customerID == nil {
		return item.CatalogPrice, nil
	}

	customer, err := p.customers.FindByID(ctx, *customerID)
	if err != nil {
		return decimal.Zero, ErrCustomerNotFound
	}
	rank, err := p.ranks.FindByID(ctx, customer.MembershipRankID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("load membership rank: %w", err)
	}
	if rank.DiscountPercent.IsZero() {
		return item.CatalogPrice, nil
	}

	// price * (100 - discount) / 100, rounded DOWN to the whole currency unit.
	hundred := decimal.NewFromInt(100)
	discounted := item.CatalogPrice.Mul(hundred.Sub(rank.DiscountPercent)).Div(hundred)
	return discounted.Floor(), nil
}
