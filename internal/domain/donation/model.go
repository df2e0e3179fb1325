package donation

import (
	"strings"
	"time"

	ierr "github.com/ihsanfund/donations/internal/errors"
	"github.com/ihsanfund/donations/internal/types"
	"github.com/shopspring/decimal"
)

// Donation is one attempt to give money to a project through a payment provider
type Donation struct {
	ID        string  `db:"id" json:"id"`
	ProjectID string  `db:"project_id" json:"project_id"`
	DonorID   *string `db:"donor_id" json:"donor_id,omitempty"`
	// Amount is in major units of Currency, at most two decimal places
	Amount        decimal.Decimal      `db:"amount" json:"amount"`
	Currency      string               `db:"currency" json:"currency"`
	PaymentMethod types.PaymentMethod  `db:"payment_method" json:"payment_method"`
	Status        types.DonationStatus `db:"status" json:"status"`
	// PaymentID is the provider's identifier, unique per payment method
	PaymentID *string `db:"payment_id" json:"payment_id,omitempty"`
	// PaymentDetails is the raw provider response captured at creation
	PaymentDetails types.JSONB `db:"payment_details" json:"payment_details,omitempty"`
	PaidAt         *time.Time  `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updated_at"`
}

// MaxAmountScale is the number of fractional digits an amount may carry
const MaxAmountScale = 2

// Validate checks the fields fixed at creation
func (d *Donation) Validate() error {
	if d.ProjectID == "" {
		return ierr.NewError("project_id is required").
			WithHint("Please select a project").
			Mark(ierr.ErrValidation)
	}
	if err := ValidateAmount(d.Amount); err != nil {
		return err
	}
	if err := ValidateCurrency(d.Currency); err != nil {
		return err
	}
	if err := d.PaymentMethod.Validate(); err != nil {
		return err
	}
	return d.Status.Validate()
}

// ValidateAmount rejects non-positive amounts and amounts with sub-cent precision
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ierr.NewError("invalid amount").
			WithHint("Amount must be greater than 0").
			WithReportableDetails(map[string]any{"amount": amount.String()}).
			Mark(ierr.ErrValidation)
	}
	if !amount.Equal(amount.Round(MaxAmountScale)) {
		return ierr.NewError("invalid amount precision").
			WithHint("Amount can have at most two decimal places").
			WithReportableDetails(map[string]any{"amount": amount.String()}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ValidateCurrency accepts three letter ISO 4217 codes
func ValidateCurrency(currency string) error {
	if len(currency) != 3 || strings.ToUpper(currency) != currency {
		return ierr.NewError("invalid currency").
			WithHint("Currency must be a three letter ISO code such as USD").
			WithReportableDetails(map[string]any{"currency": currency}).
			Mark(ierr.ErrValidation)
	}
	for _, r := range currency {
		if r < 'A' || r > 'Z' {
			return ierr.NewError("invalid currency").
				WithHint("Currency must be a three letter ISO code such as USD").
				WithReportableDetails(map[string]any{"currency": currency}).
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

// GetPaymentID returns the provider id or an empty string
func (d *Donation) GetPaymentID() string {
	if d.PaymentID == nil {
		return ""
	}
	return *d.PaymentID
}

// IsAnonymous reports whether the donation has no donor attached
func (d *Donation) IsAnonymous() bool {
	return d.DonorID == nil || *d.DonorID == ""
}
