package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
)

// StripeGateway talks to Stripe directly. PIX intents materialize their QR
// code only after an explicit confirm call, mirroring the provider's flow.
type StripeGateway struct {
	apiKey string
}

func NewStripeGateway(apiKey string) *StripeGateway {
	stripe.Key = apiKey
	return &StripeGateway{apiKey: apiKey}
}

func (g *StripeGateway) CreatePayment(ctx context.Context, req CreateRequest) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountCents),
		Currency: stripe.String("brl"),
	}
	params.Context = ctx

	switch req.Method {
	case MethodPix:
		params.PaymentMethodTypes = stripe.StringSlice([]string{"pix"})
	case MethodCard:
		params.PaymentMethodTypes = stripe.StringSlice([]string{"card"})
	default:
		return nil, fmt.Errorf("%w: unsupported method %q", ErrGateway, req.Method)
	}

	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	params.AddMetadata("user_id", fmt.Sprintf("%d", req.UserID))
	params.AddMetadata("user_email", req.UserEmail)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: create payment intent: %v", ErrGateway, err)
	}

	return mapIntent(pi, req.Method)
}

func (g *StripeGateway) ConfirmPix(ctx context.Context, paymentID string) (*PixCharge, error) {
	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethodData: &stripe.PaymentIntentPaymentMethodDataParams{
			Type: stripe.String("pix"),
		},
	}
	params.Context = ctx

	pi, err := paymentintent.Confirm(paymentID, params)
	if err != nil {
		return nil, fmt.Errorf("%w: confirm pix: %v", ErrGateway, err)
	}

	return mapPixCharge(pi), nil
}

func (g *StripeGateway) ConfirmCard(ctx context.Context, paymentID string) (*Snapshot, error) {
	params := &stripe.PaymentIntentConfirmParams{}
	params.Context = ctx

	pi, err := paymentintent.Confirm(paymentID, params)
	if err != nil {
		return nil, fmt.Errorf("%w: confirm card: %v", ErrGateway, err)
	}

	return mapSnapshot(pi)
}

func (g *StripeGateway) GetStatus(ctx context.Context, paymentID string) (*Snapshot, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(paymentID, params)
	if err != nil {
		return nil, fmt.Errorf("%w: get payment intent: %v", ErrGateway, err)
	}

	return mapSnapshot(pi)
}

func mapIntent(pi *stripe.PaymentIntent, method Method) (*Intent, error) {
	status := Status(pi.Status)
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, pi.Status)
	}

	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       status,
		AmountCents:  pi.Amount,
		Method:       method,
	}, nil
}

func mapSnapshot(pi *stripe.PaymentIntent) (*Snapshot, error) {
	status := Status(pi.Status)
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, pi.Status)
	}

	method := MethodCard
	for _, t := range pi.PaymentMethodTypes {
		if t == "pix" {
			method = MethodPix
		}
	}

	return &Snapshot{
		ID:          pi.ID,
		Status:      status,
		AmountCents: pi.Amount,
		Method:      method,
	}, nil
}

// mapPixCharge flattens the provider's nested next_action shape into the
// tagged PixCharge result. Missing fields mean the code is not ready yet,
// not an error.
func mapPixCharge(pi *stripe.PaymentIntent) *PixCharge {
	if pi.NextAction == nil || pi.NextAction.PixDisplayQRCode == nil {
		return &PixCharge{Pending: true}
	}

	qr := pi.NextAction.PixDisplayQRCode
	if qr.Data == "" {
		return &PixCharge{Pending: true}
	}

	return &PixCharge{
		QRCodeImage:   qr.ImageURLSVG,
		CopyPasteCode: qr.Data,
	}
}
