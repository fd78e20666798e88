package investment

import (
	"context"

	"debmarket/internal/offering"
)

type Repository interface {
	Invest(ctx context.Context, userID, offeringID int, amountCents int64) (*Investment, error)
	GetPortfolio(ctx context.Context, userID int) ([]PortfolioItem, error)
	GetOffering(ctx context.Context, offeringID int) (*offering.Offering, error)
}
