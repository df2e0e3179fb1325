package donation

import (
	"strings"
	"testing"
	"time"

	"github.com/ihsanfund/donations/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraft(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	donorID := "donor_1"

	draft := NewDraft("proj_1", &donorID, decimal.RequireFromString("25.50"), "USD", types.PaymentMethodStripe, now)
	donorID = "mutated"

	pending := draft.Build()
	assert.True(t, strings.HasPrefix(pending.ID, types.UUID_PREFIX_DONATION+"_"))
	assert.Equal(t, draft.ID(), pending.ID)
	assert.Equal(t, types.DonationStatusPending, pending.Status)
	assert.Equal(t, "donor_1", *pending.DonorID, "draft must copy the donor id")
	assert.Empty(t, pending.GetPaymentID())
	require.NoError(t, pending.Validate())

	paid := draft.WithPayment("cs_test_1", types.JSONB(`{"id":"cs_test_1"}`), now.Add(time.Second))
	withPayment := paid.Build()
	assert.Equal(t, "cs_test_1", withPayment.GetPaymentID())
	assert.JSONEq(t, `{"id":"cs_test_1"}`, string(withPayment.PaymentDetails))
	assert.Equal(t, pending.ID, withPayment.ID)

	// the original draft is unchanged
	assert.Empty(t, draft.Build().GetPaymentID())

	// Build hands out independent copies
	withPayment.PaymentID = lo.ToPtr("changed")
	assert.Equal(t, "cs_test_1", paid.Build().GetPaymentID())
}

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		amount string
		valid  bool
	}{
		{"0.01", true},
		{"10", true},
		{"10.5", true},
		{"99999.99", true},
		{"0", false},
		{"-1", false},
		{"0.001", false},
		{"10.123", false},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			err := ValidateAmount(decimal.RequireFromString(tt.amount))
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateCurrency(t *testing.T) {
	assert.NoError(t, ValidateCurrency("KWD"))
	assert.NoError(t, ValidateCurrency("USD"))
	assert.Error(t, ValidateCurrency("usd"))
	assert.Error(t, ValidateCurrency("US"))
	assert.Error(t, ValidateCurrency("US1"))
	assert.Error(t, ValidateCurrency(""))
}
