package offering

import "time"

const (
	StatusOpen    = "open"
	StatusClosed  = "closed"
	StatusMatured = "matured"
)

type Company struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CNPJ      string    `db:"cnpj" json:"cnpj"`
	Sector    string    `db:"sector" json:"sector"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Offering is one debenture issuance. Rates are basis points per year,
// amounts are integer cents.
type Offering struct {
	ID                 int       `db:"id" json:"id"`
	CompanyID          int       `db:"company_id" json:"company_id"`
	Name               string    `db:"name" json:"name"`
	AnnualRateBps      int       `db:"annual_rate_bps" json:"annual_rate_bps"`
	UnitPriceCents     int64     `db:"unit_price_cents" json:"unit_price_cents"`
	MinInvestmentCents int64     `db:"min_investment_cents" json:"min_investment_cents"`
	TargetCents        int64     `db:"target_cents" json:"target_cents"`
	RaisedCents        int64     `db:"raised_cents" json:"raised_cents"`
	MaturityDate       time.Time `db:"maturity_date" json:"maturity_date"`
	Status             string    `db:"status" json:"status"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

func (o *Offering) RemainingCents() int64 {
	return o.TargetCents - o.RaisedCents
}

type OfferingWithCompany struct {
	Offering
	CompanyName   string `db:"company_name" json:"company_name"`
	CompanyCNPJ   string `db:"company_cnpj" json:"company_cnpj"`
	CompanySector string `db:"company_sector" json:"company_sector"`
}

type CreateCompanyRequest struct {
	Name   string `json:"name" binding:"required"`
	CNPJ   string `json:"cnpj" binding:"required"`
	Sector string `json:"sector" binding:"required"`
}

type CreateOfferingRequest struct {
	CompanyID          int    `json:"company_id" binding:"required"`
	Name               string `json:"name" binding:"required"`
	AnnualRateBps      int    `json:"annual_rate_bps" binding:"required"`
	UnitPriceCents     int64  `json:"unit_price_cents" binding:"required"`
	MinInvestmentCents int64  `json:"min_investment_cents" binding:"required"`
	TargetCents        int64  `json:"target_cents" binding:"required"`
	MaturityDate       string `json:"maturity_date" binding:"required"`
}
