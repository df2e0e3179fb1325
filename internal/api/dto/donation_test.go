package dto

import (
	"testing"

	ierr "github.com/ihsanfund/donations/internal/errors"
	"github.com/ihsanfund/donations/internal/integration/base"
	"github.com/ihsanfund/donations/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDonationRequestNormalize(t *testing.T) {
	req := &CreateDonationRequest{
		ProjectID:     "  proj_1 ",
		DonorID:       lo.ToPtr("   "),
		Amount:        decimal.RequireFromString("10"),
		Currency:      " kwd",
		PaymentMethod: "myfatoorah ",
	}
	req.Normalize()

	assert.Equal(t, "proj_1", req.ProjectID)
	assert.Nil(t, req.DonorID)
	assert.Equal(t, "KWD", req.Currency)
	assert.Equal(t, types.PaymentMethodMyFatoorah, req.PaymentMethod)
	require.NoError(t, req.Validate())

	req.DonorID = lo.ToPtr(" donor_1 ")
	req.Normalize()
	assert.Equal(t, "donor_1", *req.DonorID)
}

func TestCreateDonationRequestValidate(t *testing.T) {
	valid := func() *CreateDonationRequest {
		return &CreateDonationRequest{
			ProjectID:     "proj_1",
			Amount:        decimal.RequireFromString("99.99"),
			Currency:      "USD",
			PaymentMethod: types.PaymentMethodStripe,
		}
	}
	require.NoError(t, valid().Validate())

	req := valid()
	req.Amount = decimal.RequireFromString("0.001")
	assert.True(t, ierr.IsValidation(req.Validate()))

	req = valid()
	req.PaymentMethod = "CASH"
	assert.True(t, ierr.IsInvalidPaymentMethod(req.Validate()))

	req = valid()
	req.PaymentMethod = ""
	assert.True(t, ierr.IsValidation(req.Validate()))
}

func TestBatchReconcileRequestValidate(t *testing.T) {
	assert.NoError(t, (&BatchReconcileRequest{}).Validate())
	assert.NoError(t, (&BatchReconcileRequest{Limit: 100}).Validate())
	assert.True(t, ierr.IsValidation((&BatchReconcileRequest{Limit: 1000}).Validate()))
}

func TestNewPaymentStatusResponse(t *testing.T) {
	amount := decimal.RequireFromString("12.5")
	resp := NewPaymentStatusResponse(types.PaymentMethodMyFatoorah, &base.PaymentResult{
		ID:             "98765",
		Status:         types.DonationStatusCompleted,
		ProviderStatus: "Paid",
		Amount:         &amount,
		Currency:       "KWD",
	})

	assert.Equal(t, types.PaymentMethodMyFatoorah, resp.PaymentMethod)
	assert.Equal(t, "98765", resp.PaymentID)
	assert.Equal(t, types.DonationStatusCompleted, resp.Status)
	assert.Equal(t, "Paid", resp.ProviderStatus)
	assert.Equal(t, "KWD", resp.Currency)
}
