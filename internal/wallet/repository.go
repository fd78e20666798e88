package wallet

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicateReference  = errors.New("transaction reference already processed")
	ErrInvalidAmount       = errors.New("amount must be positive")
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetOrCreateWallet(ctx context.Context, userID int) (*Wallet, error) {
	w := &Wallet{}
	err := r.db.GetContext(ctx, w, `SELECT * FROM wallets WHERE user_id = $1`, userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	err = r.db.QueryRowxContext(ctx,
		`INSERT INTO wallets (user_id)
		 VALUES ($1)
		 RETURNING id, user_id, balance_cents, currency, created_at, updated_at`,
		userID,
	).StructScan(w)
	if err != nil {
		return nil, err
	}

	return w, nil
}

// AddTransaction applies one signed ledger entry inside a transaction,
// locking the wallet row. The balance can never go negative.
func (r *PostgresRepository) AddTransaction(ctx context.Context, userID int, amountCents int64, txType TransactionType, reference string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var w Wallet
	err = tx.QueryRowxContext(ctx,
		`SELECT id, user_id, balance_cents, currency, created_at, updated_at
		 FROM wallets
		 WHERE user_id = $1
		 FOR UPDATE`,
		userID,
	).StructScan(&w)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		err = tx.QueryRowxContext(ctx,
			`INSERT INTO wallets (user_id)
			 VALUES ($1)
			 RETURNING id, user_id, balance_cents, currency, created_at, updated_at`,
			userID,
		).StructScan(&w)
		if err != nil {
			return err
		}
	}

	newBalance := w.BalanceCents + amountCents
	if newBalance < 0 {
		return ErrInsufficientBalance
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE wallets
		 SET balance_cents = $1, updated_at = NOW()
		 WHERE id = $2`,
		newBalance, w.ID,
	)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO wallet_transactions (wallet_id, amount_cents, type, reference, balance_after)
		 VALUES ($1, $2, $3, $4, $5)`,
		w.ID, amountCents, txType, reference, newBalance,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateReference
		}
		return err
	}

	return tx.Commit()
}

// Deposit credits a confirmed payment. The payment ID is the ledger
// reference, so crediting the same payment twice fails with
// ErrDuplicateReference.
func (r *PostgresRepository) Deposit(ctx context.Context, userID int, amountCents int64, paymentID string) error {
	if amountCents <= 0 {
		return ErrInvalidAmount
	}
	return r.AddTransaction(ctx, userID, amountCents, TypeDeposit, paymentID)
}

func (r *PostgresRepository) Withdraw(ctx context.Context, userID int, amountCents int64) error {
	if amountCents <= 0 {
		return ErrInvalidAmount
	}
	return r.AddTransaction(ctx, userID, -amountCents, TypeWithdrawal, "")
}

func (r *PostgresRepository) GetTransactions(ctx context.Context, userID int, limit, offset int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 50
	}

	var walletID int
	err := r.db.GetContext(ctx, &walletID, `SELECT id FROM wallets WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []Transaction{}, nil
		}
		return nil, err
	}

	var txs []Transaction
	err = r.db.SelectContext(ctx, &txs, `
		SELECT id, wallet_id, amount_cents, type, reference, balance_after, created_at
		FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, walletID, limit, offset)
	if err != nil {
		return nil, err
	}

	return txs, nil
}
