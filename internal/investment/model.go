package investment

import "time"

// Investment is a filled order against one offering. Amounts are integer
// cents; units is AmountCents divided by the offering unit price at the
// time of purchase.
type Investment struct {
	ID          int       `db:"id" json:"id"`
	UserID      int       `db:"user_id" json:"user_id"`
	OfferingID  int       `db:"offering_id" json:"offering_id"`
	AmountCents int64     `db:"amount_cents" json:"amount_cents"`
	Units       int64     `db:"units" json:"units"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type PortfolioItem struct {
	Investment
	OfferingName  string    `db:"offering_name" json:"offering_name"`
	CompanyName   string    `db:"company_name" json:"company_name"`
	AnnualRateBps int       `db:"annual_rate_bps" json:"annual_rate_bps"`
	MaturityDate  time.Time `db:"maturity_date" json:"maturity_date"`
	Status        string    `db:"status" json:"status"`
}

type InvestRequest struct {
	AmountCents int64 `json:"amount_cents" binding:"required"`
}
