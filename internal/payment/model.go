package payment

// Status mirrors the provider's payment intent lifecycle. The set is
// closed: anything else coming off the wire is rejected at the gateway
// boundary.
type Status string

const (
	StatusRequiresPaymentMethod Status = "requires_payment_method"
	StatusRequiresConfirmation  Status = "requires_confirmation"
	StatusRequiresAction        Status = "requires_action"
	StatusProcessing            Status = "processing"
	StatusSucceeded             Status = "succeeded"
	StatusCanceled              Status = "canceled"
)

// Terminal reports whether no further transition can occur.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusCanceled
}

func (s Status) Valid() bool {
	switch s {
	case StatusRequiresPaymentMethod, StatusRequiresConfirmation,
		StatusRequiresAction, StatusProcessing, StatusSucceeded, StatusCanceled:
		return true
	}
	return false
}

type Method string

const (
	MethodPix  Method = "pix"
	MethodCard Method = "card"
)

func (m Method) Valid() bool {
	return m == MethodPix || m == MethodCard
}

type CreateRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Method      Method `json:"method"`
	UserID      int    `json:"user_id"`
	UserEmail   string `json:"user_email"`
	Description string `json:"description"`
}

// Intent is a read-only projection of the provider's payment intent.
// ClientSecret is needed for the card path only and must never be logged.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret,omitempty"`
	Status       Status `json:"status"`
	AmountCents  int64  `json:"amount_cents"`
	Method       Method `json:"method"`
}

// Snapshot is a single status observation for an intent.
type Snapshot struct {
	ID          string `json:"id"`
	Status      Status `json:"status"`
	AmountCents int64  `json:"amount_cents"`
	Method      Method `json:"payment_method"`
}

// PixCharge is the outcome of confirming a PIX intent. Either the code is
// ready for display or the provider has not produced it yet.
type PixCharge struct {
	QRCodeImage   string `json:"qr_code_image,omitempty"`
	CopyPasteCode string `json:"copy_paste_code,omitempty"`
	Pending       bool   `json:"pending,omitempty"`
}

func (p PixCharge) Ready() bool {
	return !p.Pending && p.CopyPasteCode != ""
}
