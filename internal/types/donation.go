package types

import (
	ierr "github.com/ihsanfund/donations/internal/errors"
	"github.com/samber/lo"
)

// DonationStatus is the canonical status of a donation, independent of the
// provider vocabulary it was mapped from
type DonationStatus string

const (
	DonationStatusPending    DonationStatus = "PENDING"
	DonationStatusProcessing DonationStatus = "PROCESSING"
	DonationStatusCompleted  DonationStatus = "COMPLETED"
	DonationStatusFailed     DonationStatus = "FAILED"
	DonationStatusCancelled  DonationStatus = "CANCELLED"
)

func (s DonationStatus) String() string {
	return string(s)
}

func (s DonationStatus) Validate() error {
	allowed := []DonationStatus{
		DonationStatusPending,
		DonationStatusProcessing,
		DonationStatusCompleted,
		DonationStatusFailed,
		DonationStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewErrorf("invalid donation status: %s", s).
			WithHintf("Donation status must be one of %v", allowed).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsTerminal reports whether no further provider transition applies
func (s DonationStatus) IsTerminal() bool {
	return s == DonationStatusCompleted ||
		s == DonationStatusFailed ||
		s == DonationStatusCancelled
}

// PaymentMethod selects the external provider a donation is paid through
type PaymentMethod string

const (
	PaymentMethodMyFatoorah PaymentMethod = "MYFATOORAH"
	PaymentMethodStripe     PaymentMethod = "STRIPE"
)

func (m PaymentMethod) String() string {
	return string(m)
}

func (m PaymentMethod) Validate() error {
	allowed := []PaymentMethod{
		PaymentMethodMyFatoorah,
		PaymentMethodStripe,
	}
	if !lo.Contains(allowed, m) {
		return ierr.NewErrorf("unsupported payment method: %s", m).
			WithHintf("Payment method must be one of %v", allowed).
			Mark(ierr.ErrInvalidPaymentMethod)
	}
	return nil
}

// DonationFilter narrows admin listings
type DonationFilter struct {
	ProjectID string           `form:"project_id"`
	Statuses  []DonationStatus `form:"status"`
	Limit     int              `form:"limit" validate:"omitempty,min=1,max=500"`
	Offset    int              `form:"offset" validate:"omitempty,min=0"`
}

const DefaultDonationListLimit = 50

// GetLimit returns the page size, defaulting when unset
func (f *DonationFilter) GetLimit() int {
	if f == nil || f.Limit <= 0 {
		return DefaultDonationListLimit
	}
	return f.Limit
}

func (f *DonationFilter) GetOffset() int {
	if f == nil || f.Offset < 0 {
		return 0
	}
	return f.Offset
}

func (f *DonationFilter) Validate() error {
	if f == nil {
		return nil
	}
	for _, s := range f.Statuses {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}
