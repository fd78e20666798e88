package payment

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-resty/resty/v2"
)

// RESTGateway talks to the payments facade. The facade speaks major-unit
// float amounts; conversion to and from cents happens here and nowhere else.
type RESTGateway struct {
	client *resty.Client
}

func NewRESTGateway(baseURL string) *RESTGateway {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &RESTGateway{client: client}
}

// req prepares a request that unmarshals the body as JSON even when the
// facade omits or mislabels the response Content-Type.
func (g *RESTGateway) req(ctx context.Context) *resty.Request {
	return g.client.R().
		SetContext(ctx).
		ForceContentType("application/json")
}

type createPaymentBody struct {
	Amount      float64 `json:"amount"`
	UserID      int     `json:"user_id"`
	UserEmail   string  `json:"user_email"`
	Description string  `json:"description"`
}

type paymentEnvelope struct {
	Success bool `json:"success"`
	Payment struct {
		ID           string  `json:"id"`
		ClientSecret string  `json:"client_secret"`
		Status       string  `json:"status"`
		Amount       float64 `json:"amount"`
	} `json:"payment"`
	Error string `json:"error"`
}

type confirmEnvelope struct {
	Success    bool    `json:"success"`
	ID         string  `json:"id"`
	Status     string  `json:"status"`
	Amount     float64 `json:"amount"`
	NextAction *struct {
		PixDisplayQRCode *struct {
			ImageURLSVG string `json:"image_url_svg"`
			Data        string `json:"data"`
		} `json:"pix_display_qr_code"`
	} `json:"next_action"`
	Error string `json:"error"`
}

type statusEnvelope struct {
	ID            string  `json:"id"`
	Status        string  `json:"status"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
}

func toCents(major float64) int64 {
	return int64(math.Round(major * 100))
}

func toMajor(cents int64) float64 {
	return float64(cents) / 100
}

func (g *RESTGateway) CreatePayment(ctx context.Context, req CreateRequest) (*Intent, error) {
	if !req.Method.Valid() {
		return nil, fmt.Errorf("%w: unsupported method %q", ErrGateway, req.Method)
	}

	var out paymentEnvelope
	resp, err := g.req(ctx).
		SetBody(createPaymentBody{
			Amount:      toMajor(req.AmountCents),
			UserID:      req.UserID,
			UserEmail:   req.UserEmail,
			Description: req.Description,
		}).
		SetResult(&out).
		Post("/" + string(req.Method))
	if err != nil {
		return nil, fmt.Errorf("%w: create payment: %v", ErrGateway, err)
	}
	if resp.IsError() || !out.Success {
		return nil, fmt.Errorf("%w: create payment: status %d %s", ErrGateway, resp.StatusCode(), out.Error)
	}

	status := Status(out.Payment.Status)
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, out.Payment.Status)
	}

	return &Intent{
		ID:           out.Payment.ID,
		ClientSecret: out.Payment.ClientSecret,
		Status:       status,
		AmountCents:  toCents(out.Payment.Amount),
		Method:       req.Method,
	}, nil
}

func (g *RESTGateway) ConfirmPix(ctx context.Context, paymentID string) (*PixCharge, error) {
	out, err := g.confirm(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if out.NextAction == nil || out.NextAction.PixDisplayQRCode == nil || out.NextAction.PixDisplayQRCode.Data == "" {
		return &PixCharge{Pending: true}, nil
	}

	return &PixCharge{
		QRCodeImage:   out.NextAction.PixDisplayQRCode.ImageURLSVG,
		CopyPasteCode: out.NextAction.PixDisplayQRCode.Data,
	}, nil
}

func (g *RESTGateway) ConfirmCard(ctx context.Context, paymentID string) (*Snapshot, error) {
	out, err := g.confirm(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	status := Status(out.Status)
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, out.Status)
	}

	return &Snapshot{
		ID:          out.ID,
		Status:      status,
		AmountCents: toCents(out.Amount),
		Method:      MethodCard,
	}, nil
}

func (g *RESTGateway) confirm(ctx context.Context, paymentID string) (*confirmEnvelope, error) {
	var out confirmEnvelope
	resp, err := g.req(ctx).
		SetResult(&out).
		Post("/" + paymentID + "/confirm")
	if err != nil {
		return nil, fmt.Errorf("%w: confirm payment: %v", ErrGateway, err)
	}
	if resp.StatusCode() == 404 {
		return nil, ErrPaymentNotFound
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: confirm payment: status %d %s", ErrGateway, resp.StatusCode(), out.Error)
	}
	return &out, nil
}

func (g *RESTGateway) GetStatus(ctx context.Context, paymentID string) (*Snapshot, error) {
	var out statusEnvelope
	resp, err := g.req(ctx).
		SetResult(&out).
		Get("/" + paymentID + "/status")
	if err != nil {
		return nil, fmt.Errorf("%w: get status: %v", ErrGateway, err)
	}
	if resp.StatusCode() == 404 {
		return nil, ErrPaymentNotFound
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: get status: status %d", ErrGateway, resp.StatusCode())
	}

	status := Status(out.Status)
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, out.Status)
	}

	method := Method(out.PaymentMethod)
	if !method.Valid() {
		method = MethodPix
	}

	return &Snapshot{
		ID:          out.ID,
		Status:      status,
		AmountCents: toCents(out.Amount),
		Method:      method,
	}, nil
}
