package base

import (
	"context"

	"github.com/ihsanfund/donations/internal/types"
	"github.com/shopspring/decimal"
)

// Gateway is implemented by every external payment provider a donation can be paid through
type Gateway interface {
	// Method is the payment method this gateway serves
	Method() types.PaymentMethod

	// CreatePayment opens a payment at the provider. It returns an error marked
	// ErrPaymentGateway on any failure and never a result without ID and URL.
	CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*PaymentResult, error)

	// GetPaymentStatus re-queries the provider for a payment it issued
	GetPaymentStatus(ctx context.Context, providerID string) (*PaymentResult, error)
}

// CreatePaymentRequest carries what a provider needs to open a payment for a donation
type CreatePaymentRequest struct {
	Amount        decimal.Decimal
	Currency      string
	DonationID    string
	ProjectTitle  string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

// PaymentResult is the provider-neutral view of a payment
type PaymentResult struct {
	ID  string `json:"id"`
	URL string `json:"url,omitempty"`
	// Status is the canonical status mapped from ProviderStatus
	Status         types.DonationStatus `json:"status"`
	ProviderStatus string               `json:"provider_status,omitempty"`
	Amount         *decimal.Decimal     `json:"amount,omitempty"`
	Currency       string               `json:"currency,omitempty"`
	Metadata       map[string]string    `json:"metadata,omitempty"`
	// Raw is the provider response body, kept for audit
	Raw types.JSONB `json:"-"`
}
