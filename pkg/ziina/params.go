package ziina

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentRequestCreateParams describes a hosted payment page request.
// Amount is the decimal charge total; it is converted to minor units
// (fils for AED) on the wire.
type PaymentRequestCreateParams struct {
	Amount        decimal.Decimal
	Currency      string
	CustomerEmail string
	CustomerName  string
	CustomerPhone string
	Reference     string
	Description   string
	SuccessURL    string
	FailureURL    string
	CancelURL     string
}

type customerPayload struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type createPaymentRequestBody struct {
	Amount      int64            `json:"amount"`
	Currency    string           `json:"currency"`
	Customer    *customerPayload `json:"customer,omitempty"`
	Reference   string           `json:"reference,omitempty"`
	Description string           `json:"description,omitempty"`
	SuccessURL  string           `json:"success_url"`
	FailureURL  string           `json:"failure_url"`
	CancelURL   string           `json:"cancel_url"`
}

func (p PaymentRequestCreateParams) toRequestBody(defaultCurrency string) createPaymentRequestBody {
	currency := strings.TrimSpace(p.Currency)
	if currency == "" {
		currency = defaultCurrency
	}

	body := createPaymentRequestBody{
		Amount:      ToMinorUnits(p.Amount),
		Currency:    currency,
		Reference:   p.Reference,
		Description: p.Description,
		SuccessURL:  p.SuccessURL,
		FailureURL:  p.FailureURL,
		CancelURL:   p.CancelURL,
	}

	if p.CustomerEmail != "" || p.CustomerName != "" || p.CustomerPhone != "" {
		body.Customer = &customerPayload{
			Email: p.CustomerEmail,
			Name:  p.CustomerName,
			Phone: p.CustomerPhone,
		}
	}
	return body
}

// ToMinorUnits converts a decimal amount into the smallest currency unit,
// rounding half away from zero (25.505 AED becomes 2551 fils).
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// PaymentRequest is the provider's representation of a hosted payment.
type PaymentRequest struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Reference   string `json:"reference,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

// Payment request statuses reported by the provider.
const (
	StatusPaid      = "paid"
	StatusCancelled = "cancelled"
	StatusFailed    = "failed"
	StatusPending   = "pending"
)
