package donation

import (
	"context"
	"time"

	"github.com/ihsanfund/donations/internal/types"
)

// Repository defines the interface for donation persistence
type Repository interface {
	Create(ctx context.Context, d *Donation) error
	Get(ctx context.Context, id string) (*Donation, error)
	// GetForUpdate locks the row until the surrounding transaction ends
	GetForUpdate(ctx context.Context, id string) (*Donation, error)
	// GetByPaymentIDForUpdate finds the donation a provider event refers to and locks it
	GetByPaymentIDForUpdate(ctx context.Context, method types.PaymentMethod, paymentID string) (*Donation, error)
	AttachPayment(ctx context.Context, id string, paymentID string, details types.JSONB) error
	UpdateStatus(ctx context.Context, id string, status types.DonationStatus, paidAt *time.Time) error
	List(ctx context.Context, filter *types.DonationFilter) ([]*Donation, error)
	Count(ctx context.Context, filter *types.DonationFilter) (int, error)
}
