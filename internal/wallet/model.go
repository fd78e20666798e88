package wallet

import "time"

// Wallet holds a user's investable balance in integer cents (BRL).
type Wallet struct {
	ID           int       `db:"id" json:"id"`
	UserID       int       `db:"user_id" json:"user_id"`
	BalanceCents int64     `db:"balance_cents" json:"balance_cents"`
	Currency     string    `db:"currency" json:"currency"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type TransactionType string

const (
	TypeDeposit          TransactionType = "deposit"
	TypeWithdrawal       TransactionType = "withdrawal"
	TypeInvestmentDebit  TransactionType = "investment_debit"
	TypeRedemptionCredit TransactionType = "redemption_credit"
)

// Transaction is one ledger entry. Reference carries the provider payment
// ID for deposits; a unique index rejects double credits for the same payment.
type Transaction struct {
	ID           int             `db:"id" json:"id"`
	WalletID     int             `db:"wallet_id" json:"wallet_id"`
	AmountCents  int64           `db:"amount_cents" json:"amount_cents"`
	Type         TransactionType `db:"type" json:"type"`
	Reference    string          `db:"reference" json:"reference,omitempty"`
	BalanceAfter int64           `db:"balance_after" json:"balance_after"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

type WithdrawRequest struct {
	AmountCents int64  `json:"amount_cents" binding:"required"`
	PixKey      string `json:"pix_key" binding:"required"`
}
