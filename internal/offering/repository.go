package offering

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateCompany(ctx context.Context, name, cnpj, sector string) (*Company, error) {
	query := `
		INSERT INTO companies (name, cnpj, sector)
		VALUES ($1, $2, $3)
		RETURNING id, name, cnpj, sector, created_at
	`

	var company Company
	err := r.db.GetContext(ctx, &company, query, name, cnpj, sector)
	if err != nil {
		return nil, err
	}

	return &company, nil
}

func (r *PostgresRepository) GetCompanyByID(ctx context.Context, id int) (*Company, error) {
	query := `
		SELECT id, name, cnpj, sector, created_at
		FROM companies
		WHERE id = $1
	`

	var company Company
	err := r.db.GetContext(ctx, &company, query, id)
	if err != nil {
		return nil, err
	}

	return &company, nil
}

func (r *PostgresRepository) CreateOffering(ctx context.Context, o *Offering) (*Offering, error) {
	query := `
		INSERT INTO offerings (company_id, name, annual_rate_bps, unit_price_cents,
		                       min_investment_cents, target_cents, maturity_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, company_id, name, annual_rate_bps, unit_price_cents,
		          min_investment_cents, target_cents, raised_cents, maturity_date, status, created_at
	`

	var created Offering
	err := r.db.GetContext(ctx, &created, query,
		o.CompanyID, o.Name, o.AnnualRateBps, o.UnitPriceCents,
		o.MinInvestmentCents, o.TargetCents, o.MaturityDate, StatusOpen,
	)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *PostgresRepository) ListOpen(ctx context.Context) ([]OfferingWithCompany, error) {
	query := `
		SELECT o.id, o.company_id, o.name, o.annual_rate_bps, o.unit_price_cents,
		       o.min_investment_cents, o.target_cents, o.raised_cents, o.maturity_date,
		       o.status, o.created_at,
		       c.name AS company_name, c.cnpj AS company_cnpj, c.sector AS company_sector
		FROM offerings o
		JOIN companies c ON c.id = o.company_id
		WHERE o.status = $1
		ORDER BY o.created_at DESC
	`

	var offerings []OfferingWithCompany
	err := r.db.SelectContext(ctx, &offerings, query, StatusOpen)
	if err != nil {
		return nil, err
	}

	return offerings, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (*OfferingWithCompany, error) {
	query := `
		SELECT o.id, o.company_id, o.name, o.annual_rate_bps, o.unit_price_cents,
		       o.min_investment_cents, o.target_cents, o.raised_cents, o.maturity_date,
		       o.status, o.created_at,
		       c.name AS company_name, c.cnpj AS company_cnpj, c.sector AS company_sector
		FROM offerings o
		JOIN companies c ON c.id = o.company_id
		WHERE o.id = $1
	`

	var offering OfferingWithCompany
	err := r.db.GetContext(ctx, &offering, query, id)
	if err != nil {
		return nil, err
	}

	return &offering, nil
}

func (r *PostgresRepository) Close(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE offerings SET status = $1 WHERE id = $2 AND status = $3`,
		StatusClosed, id, StatusOpen,
	)
	return err
}

// MarkMatured flips open or closed offerings whose maturity date has passed.
func (r *PostgresRepository) MarkMatured(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE offerings SET status = $1 WHERE maturity_date <= $2 AND status != $1`,
		StatusMatured, now,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
