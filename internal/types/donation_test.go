package types

import (
	"testing"

	ierr "github.com/ihsanfund/donations/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestDonationStatus(t *testing.T) {
	for _, s := range []DonationStatus{
		DonationStatusPending,
		DonationStatusProcessing,
		DonationStatusCompleted,
		DonationStatusFailed,
		DonationStatusCancelled,
	} {
		assert.NoError(t, s.Validate(), s)
	}
	assert.True(t, ierr.IsValidation(DonationStatus("PAID").Validate()))

	assert.False(t, DonationStatusPending.IsTerminal())
	assert.False(t, DonationStatusProcessing.IsTerminal())
	assert.True(t, DonationStatusCompleted.IsTerminal())
	assert.True(t, DonationStatusFailed.IsTerminal())
	assert.True(t, DonationStatusCancelled.IsTerminal())
}

func TestPaymentMethodValidate(t *testing.T) {
	assert.NoError(t, PaymentMethodMyFatoorah.Validate())
	assert.NoError(t, PaymentMethodStripe.Validate())

	err := PaymentMethod("stripe").Validate()
	assert.True(t, ierr.IsInvalidPaymentMethod(err))
}

func TestDonationFilter(t *testing.T) {
	var nilFilter *DonationFilter
	assert.Equal(t, DefaultDonationListLimit, nilFilter.GetLimit())
	assert.Equal(t, 0, nilFilter.GetOffset())
	assert.NoError(t, nilFilter.Validate())

	f := &DonationFilter{Limit: 10, Offset: -3}
	assert.Equal(t, 10, f.GetLimit())
	assert.Equal(t, 0, f.GetOffset())

	f.Statuses = []DonationStatus{DonationStatusPending, "SETTLED"}
	assert.Error(t, f.Validate())
}

func TestDonationEventNameFor(t *testing.T) {
	name, ok := DonationEventNameFor(DonationStatusCompleted)
	assert.True(t, ok)
	assert.Equal(t, DonationEventCompleted, name)

	name, ok = DonationEventNameFor(DonationStatusCancelled)
	assert.True(t, ok)
	assert.Equal(t, DonationEventCancelled, name)

	_, ok = DonationEventNameFor(DonationStatusProcessing)
	assert.False(t, ok)
}

func TestJSONB(t *testing.T) {
	var j JSONB
	assert.NoError(t, j.Scan([]byte(`{"a":1}`)))
	assert.JSONEq(t, `{"a":1}`, string(j))

	assert.NoError(t, j.Scan(nil))
	assert.Nil(t, j)

	v, err := j.Value()
	assert.NoError(t, err)
	assert.Nil(t, v)

	out, err := j.MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, "null", string(out))

	assert.Error(t, j.Scan(42))
}
