package wallet

import "context"

type Repository interface {
	GetOrCreateWallet(ctx context.Context, userID int) (*Wallet, error)
	AddTransaction(ctx context.Context, userID int, amountCents int64, txType TransactionType, reference string) error
	Deposit(ctx context.Context, userID int, amountCents int64, paymentID string) error
	Withdraw(ctx context.Context, userID int, amountCents int64) error
	GetTransactions(ctx context.Context, userID int, limit, offset int) ([]Transaction, error)
}
