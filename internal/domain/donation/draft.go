package donation

import (
	"time"

	"github.com/ihsanfund/donations/internal/types"
	"github.com/shopspring/decimal"
)

// Draft accumulates a donation across the steps of the creation transaction.
// Every With method returns a new Draft; the receiver is never mutated.
type Draft struct {
	donation Donation
}

// NewDraft starts a PENDING donation
func NewDraft(projectID string, donorID *string, amount decimal.Decimal, currency string, method types.PaymentMethod, now time.Time) Draft {
	return Draft{
		donation: Donation{
			ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DONATION),
			ProjectID:     projectID,
			DonorID:       copyString(donorID),
			Amount:        amount,
			Currency:      currency,
			PaymentMethod: method,
			Status:        types.DonationStatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
	}
}

// WithPayment attaches the provider's payment id and its creation response
func (d Draft) WithPayment(paymentID string, details types.JSONB, now time.Time) Draft {
	next := d.clone()
	next.donation.PaymentID = &paymentID
	next.donation.PaymentDetails = details
	next.donation.UpdatedAt = now
	return next
}

// ID returns the id generated for the draft
func (d Draft) ID() string {
	return d.donation.ID
}

// Build returns a copy of the accumulated donation
func (d Draft) Build() *Donation {
	out := d.clone().donation
	return &out
}

func (d Draft) clone() Draft {
	c := d
	c.donation.DonorID = copyString(d.donation.DonorID)
	c.donation.PaymentID = copyString(d.donation.PaymentID)
	if d.donation.PaymentDetails != nil {
		c.donation.PaymentDetails = append(types.JSONB(nil), d.donation.PaymentDetails...)
	}
	return c
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
