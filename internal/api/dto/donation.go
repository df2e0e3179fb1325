package dto

import (
	"strings"
	"time"

	"github.com/ihsanfund/donations/internal/domain/donation"
	"github.com/ihsanfund/donations/internal/integration/base"
	"github.com/ihsanfund/donations/internal/types"
	"github.com/ihsanfund/donations/internal/validator"
	"github.com/shopspring/decimal"
)

// CreateDonationRequest starts a donation and returns where to pay for it
type CreateDonationRequest struct {
	ProjectID     string              `json:"project_id" validate:"required"`
	DonorID       *string             `json:"donor_id,omitempty"`
	Amount        decimal.Decimal     `json:"amount"`
	Currency      string              `json:"currency" validate:"required,currency"`
	PaymentMethod types.PaymentMethod `json:"payment_method" validate:"required"`
	// Customer fields override the donor profile for the provider's checkout page
	CustomerName  string `json:"customer_name,omitempty" validate:"omitempty,max=255"`
	CustomerEmail string `json:"customer_email,omitempty" validate:"omitempty,email"`
	CustomerPhone string `json:"customer_phone,omitempty" validate:"omitempty,max=32"`
}

// Normalize trims inputs and upper-cases the currency before validation
func (r *CreateDonationRequest) Normalize() {
	r.ProjectID = strings.TrimSpace(r.ProjectID)
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
	r.PaymentMethod = types.PaymentMethod(strings.ToUpper(strings.TrimSpace(string(r.PaymentMethod))))
	if r.DonorID != nil {
		id := strings.TrimSpace(*r.DonorID)
		if id == "" {
			r.DonorID = nil
		} else {
			r.DonorID = &id
		}
	}
}

func (r *CreateDonationRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := donation.ValidateAmount(r.Amount); err != nil {
		return err
	}
	return r.PaymentMethod.Validate()
}

// CreateDonationResponse carries the provider URL the donor is redirected to
type CreateDonationResponse struct {
	DonationID string `json:"donation_id"`
	PaymentURL string `json:"payment_url"`
}

// DonationResponse is the public view of a donation. Provider payloads are not exposed.
type DonationResponse struct {
	ID            string               `json:"id"`
	ProjectID     string               `json:"project_id"`
	DonorID       *string              `json:"donor_id,omitempty"`
	Amount        decimal.Decimal      `json:"amount"`
	Currency      string               `json:"currency"`
	PaymentMethod types.PaymentMethod  `json:"payment_method"`
	Status        types.DonationStatus `json:"status"`
	PaymentID     *string              `json:"payment_id,omitempty"`
	PaidAt        *time.Time           `json:"paid_at,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

func NewDonationResponse(d *donation.Donation) *DonationResponse {
	if d == nil {
		return nil
	}
	return &DonationResponse{
		ID:            d.ID,
		ProjectID:     d.ProjectID,
		DonorID:       d.DonorID,
		Amount:        d.Amount,
		Currency:      d.Currency,
		PaymentMethod: d.PaymentMethod,
		Status:        d.Status,
		PaymentID:     d.PaymentID,
		PaidAt:        d.PaidAt,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// ListDonationsResponse is a page of donations
type ListDonationsResponse = types.ListResponse[*DonationResponse]

// PaymentStatusResponse is the provider's current view of a payment
type PaymentStatusResponse struct {
	PaymentMethod  types.PaymentMethod  `json:"payment_method"`
	PaymentID      string               `json:"payment_id"`
	Status         types.DonationStatus `json:"status"`
	ProviderStatus string               `json:"provider_status"`
	Amount         *decimal.Decimal     `json:"amount,omitempty"`
	Currency       string               `json:"currency,omitempty"`
}

func NewPaymentStatusResponse(method types.PaymentMethod, r *base.PaymentResult) *PaymentStatusResponse {
	return &PaymentStatusResponse{
		PaymentMethod:  method,
		PaymentID:      r.ID,
		Status:         r.Status,
		ProviderStatus: r.ProviderStatus,
		Amount:         r.Amount,
		Currency:       r.Currency,
	}
}

// ReconcileResponse reports what a reconcile or cancel did to a donation
type ReconcileResponse struct {
	DonationID     string               `json:"donation_id"`
	PreviousStatus types.DonationStatus `json:"previous_status"`
	Status         types.DonationStatus `json:"status"`
	Changed        bool                 `json:"changed"`
}

// BatchReconcileRequest selects open donations to re-check with their providers
type BatchReconcileRequest struct {
	ProjectID string `json:"project_id,omitempty"`
	Limit     int    `json:"limit,omitempty" validate:"omitempty,min=1,max=500"`
}

func (r *BatchReconcileRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// BatchReconcileResponse summarizes a batch run. Failed donations keep their status.
type BatchReconcileResponse struct {
	Checked int                  `json:"checked"`
	Changed int                  `json:"changed"`
	Results []*ReconcileResponse `json:"results"`
	Errors  map[string]string    `json:"errors,omitempty"`
}
