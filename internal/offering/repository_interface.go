package offering

import (
	"context"
	"time"
)

type Repository interface {
	CreateCompany(ctx context.Context, name, cnpj, sector string) (*Company, error)
	GetCompanyByID(ctx context.Context, id int) (*Company, error)
	CreateOffering(ctx context.Context, o *Offering) (*Offering, error)
	ListOpen(ctx context.Context) ([]OfferingWithCompany, error)
	GetByID(ctx context.Context, id int) (*OfferingWithCompany, error)
	Close(ctx context.Context, id int) error
	MarkMatured(ctx context.Context, now time.Time) (int64, error)
}
