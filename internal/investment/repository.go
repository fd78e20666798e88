package investment

import (
	"context"
	"database/sql"
	"errors"

	"debmarket/internal/offering"
	"debmarket/internal/wallet"

	"github.com/jmoiron/sqlx"
)

var (
	ErrOfferingNotFound  = errors.New("offering not found")
	ErrOfferingNotOpen   = errors.New("offering is not open for investment")
	ErrExceedsRemaining  = errors.New("amount exceeds remaining offering capacity")
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Invest debits the wallet, records the ledger entry, bumps the offering's
// raised total and creates the investment row, all in one database
// transaction. The offering and wallet rows are locked for the duration so
// two concurrent orders cannot both take the last slice or overdraw the
// balance.
func (r *PostgresRepository) Invest(ctx context.Context, userID, offeringID int, amountCents int64) (*Investment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var o offering.Offering
	err = tx.QueryRowxContext(ctx,
		`SELECT id, company_id, name, annual_rate_bps, unit_price_cents,
		        min_investment_cents, target_cents, raised_cents, maturity_date,
		        status, created_at
		 FROM offerings
		 WHERE id = $1
		 FOR UPDATE`,
		offeringID,
	).StructScan(&o)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOfferingNotFound
		}
		return nil, err
	}

	if o.Status != offering.StatusOpen {
		return nil, ErrOfferingNotOpen
	}
	if amountCents > o.RemainingCents() {
		return nil, ErrExceedsRemaining
	}

	var w wallet.Wallet
	err = tx.QueryRowxContext(ctx,
		`SELECT id, user_id, balance_cents, currency, created_at, updated_at
		 FROM wallets
		 WHERE user_id = $1
		 FOR UPDATE`,
		userID,
	).StructScan(&w)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInsufficientFunds
		}
		return nil, err
	}

	newBalance := w.BalanceCents - amountCents
	if newBalance < 0 {
		return nil, ErrInsufficientFunds
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE wallets SET balance_cents = $1, updated_at = NOW() WHERE id = $2`,
		newBalance, w.ID,
	)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO wallet_transactions (wallet_id, amount_cents, type, reference, balance_after)
		 VALUES ($1, $2, $3, $4, $5)`,
		w.ID, -amountCents, wallet.TypeInvestmentDebit, "", newBalance,
	)
	if err != nil {
		return nil, err
	}

	newRaised := o.RaisedCents + amountCents
	newStatus := o.Status
	if newRaised >= o.TargetCents {
		newStatus = offering.StatusClosed
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE offerings SET raised_cents = $1, status = $2 WHERE id = $3`,
		newRaised, newStatus, o.ID,
	)
	if err != nil {
		return nil, err
	}

	inv := &Investment{}
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO investments (user_id, offering_id, amount_cents, units)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, user_id, offering_id, amount_cents, units, created_at`,
		userID, offeringID, amountCents, amountCents/o.UnitPriceCents,
	).StructScan(inv)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return inv, nil
}

func (r *PostgresRepository) GetPortfolio(ctx context.Context, userID int) ([]PortfolioItem, error) {
	var items []PortfolioItem
	err := r.db.SelectContext(ctx, &items, `
		SELECT i.id, i.user_id, i.offering_id, i.amount_cents, i.units, i.created_at,
		       o.name AS offering_name,
		       c.name AS company_name,
		       o.annual_rate_bps,
		       o.maturity_date,
		       o.status
		FROM investments i
		JOIN offerings o ON o.id = i.offering_id
		JOIN companies c ON c.id = o.company_id
		WHERE i.user_id = $1
		ORDER BY i.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *PostgresRepository) GetOffering(ctx context.Context, offeringID int) (*offering.Offering, error) {
	o := &offering.Offering{}
	err := r.db.GetContext(ctx, o, `
		SELECT id, company_id, name, annual_rate_bps, unit_price_cents,
		       min_investment_cents, target_cents, raised_cents, maturity_date,
		       status, created_at
		FROM offerings
		WHERE id = $1
	`, offeringID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOfferingNotFound
		}
		return nil, err
	}

	return o, nil
}
