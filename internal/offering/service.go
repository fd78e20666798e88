package offering

import (
	"context"
	"errors"
	"time"
)

var (
	ErrOfferingNotFound = errors.New("offering not found")
	ErrCompanyNotFound  = errors.New("company not found")
	ErrInvalidOffering  = errors.New("invalid offering")
)

type Service interface {
	CreateCompany(ctx context.Context, req CreateCompanyRequest) (*Company, error)
	CreateOffering(ctx context.Context, req CreateOfferingRequest) (*Offering, error)
	ListOpen(ctx context.Context) ([]OfferingWithCompany, error)
	GetByID(ctx context.Context, id int) (*OfferingWithCompany, error)
	CloseOffering(ctx context.Context, id int) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateCompany(ctx context.Context, req CreateCompanyRequest) (*Company, error) {
	return s.repo.CreateCompany(ctx, req.Name, req.CNPJ, req.Sector)
}

func (s *service) CreateOffering(ctx context.Context, req CreateOfferingRequest) (*Offering, error) {
	if _, err := s.repo.GetCompanyByID(ctx, req.CompanyID); err != nil {
		return nil, ErrCompanyNotFound
	}

	maturity, err := time.Parse("2006-01-02", req.MaturityDate)
	if err != nil {
		return nil, ErrInvalidOffering
	}

	o := &Offering{
		CompanyID:          req.CompanyID,
		Name:               req.Name,
		AnnualRateBps:      req.AnnualRateBps,
		UnitPriceCents:     req.UnitPriceCents,
		MinInvestmentCents: req.MinInvestmentCents,
		TargetCents:        req.TargetCents,
		MaturityDate:       maturity,
	}

	if err := validateOffering(o); err != nil {
		return nil, err
	}

	return s.repo.CreateOffering(ctx, o)
}

func validateOffering(o *Offering) error {
	switch {
	case o.AnnualRateBps <= 0:
		return ErrInvalidOffering
	case o.UnitPriceCents <= 0:
		return ErrInvalidOffering
	case o.MinInvestmentCents < o.UnitPriceCents:
		return ErrInvalidOffering
	case o.MinInvestmentCents%o.UnitPriceCents != 0:
		return ErrInvalidOffering
	case o.TargetCents < o.MinInvestmentCents:
		return ErrInvalidOffering
	case o.TargetCents%o.UnitPriceCents != 0:
		return ErrInvalidOffering
	case !o.MaturityDate.After(time.Now()):
		return ErrInvalidOffering
	}
	return nil
}

func (s *service) ListOpen(ctx context.Context) ([]OfferingWithCompany, error) {
	return s.repo.ListOpen(ctx)
}

func (s *service) GetByID(ctx context.Context, id int) (*OfferingWithCompany, error) {
	offering, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrOfferingNotFound
	}
	return offering, nil
}

func (s *service) CloseOffering(ctx context.Context, id int) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return ErrOfferingNotFound
	}
	return s.repo.Close(ctx, id)
}
