package payment

import (
	"context"
	"errors"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrUnknownStatus   = errors.New("provider returned unknown payment status")
	ErrGateway         = errors.New("payment gateway error")
)

// Gateway abstracts the payment provider. Implementations: StripeGateway
// talks to Stripe directly, RESTGateway goes through the payments facade.
type Gateway interface {
	CreatePayment(ctx context.Context, req CreateRequest) (*Intent, error)
	ConfirmPix(ctx context.Context, paymentID string) (*PixCharge, error)
	ConfirmCard(ctx context.Context, paymentID string) (*Snapshot, error)
	GetStatus(ctx context.Context, paymentID string) (*Snapshot, error)
}
