package investment

import (
	"context"
	"errors"
	"time"

	"debmarket/internal/logger"
	"debmarket/internal/metrics"
	"debmarket/internal/offering"
)

var (
	ErrBelowMinimum    = errors.New("amount below offering minimum")
	ErrNotUnitMultiple = errors.New("amount must be a multiple of the unit price")
	ErrInvalidAmount   = errors.New("amount must be positive")
)

// Notifier delivers the investment confirmation. Optional.
type Notifier interface {
	SendInvestmentConfirmation(ctx context.Context, email, offeringName string, amountCents int64) error
}

type Service interface {
	Invest(ctx context.Context, userID int, email string, offeringID int, amountCents int64) (*Investment, error)
	GetPortfolio(ctx context.Context, userID int) ([]PortfolioItem, error)
}

type service struct {
	repo     Repository
	notifier Notifier
}

func NewService(repo Repository, notifier Notifier) Service {
	return &service{repo: repo, notifier: notifier}
}

// Invest validates the order against the offering's terms, then hands off to
// the repository which settles everything in one database transaction. Checks
// repeated there under row locks (open status, remaining capacity, balance)
// are only pre-screened here for a friendlier error before locking anything.
func (s *service) Invest(ctx context.Context, userID int, email string, offeringID int, amountCents int64) (*Investment, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}

	o, err := s.repo.GetOffering(ctx, offeringID)
	if err != nil {
		return nil, err
	}

	if o.Status != offering.StatusOpen {
		return nil, ErrOfferingNotOpen
	}
	if amountCents < o.MinInvestmentCents {
		return nil, ErrBelowMinimum
	}
	if amountCents%o.UnitPriceCents != 0 {
		return nil, ErrNotUnitMultiple
	}
	if amountCents > o.RemainingCents() {
		return nil, ErrExceedsRemaining
	}

	inv, err := s.repo.Invest(ctx, userID, offeringID, amountCents)
	if err != nil {
		return nil, err
	}

	metrics.RecordInvestment()

	if s.notifier != nil && email != "" {
		name := o.Name
		go func() {
			nctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.notifier.SendInvestmentConfirmation(nctx, email, name, amountCents); err != nil {
				logger.Error("investment notification failed", "error", err)
			}
		}()
	}

	return inv, nil
}

func (s *service) GetPortfolio(ctx context.Context, userID int) ([]PortfolioItem, error) {
	return s.repo.GetPortfolio(ctx, userID)
}
