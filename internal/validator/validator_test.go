package validator

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	ierr "github.com/ihsanfund/donations/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Currency string `json:"currency" validate:"required,currency"`
	Email    string `json:"customer_email,omitempty" validate:"omitempty,email"`
	Limit    int    `json:"limit" validate:"omitempty,min=1,max=500"`
}

func TestValidateRequest(t *testing.T) {
	require.NoError(t, ValidateRequest(&sample{Currency: "KWD"}))
	require.NoError(t, ValidateRequest(&sample{Currency: "USD", Email: "a@example.com", Limit: 20}))

	for name, s := range map[string]sample{
		"lower case currency": {Currency: "usd"},
		"short currency":      {Currency: "US"},
		"missing currency":    {},
		"bad email":           {Currency: "USD", Email: "nope"},
		"limit too large":     {Currency: "USD", Limit: 501},
	} {
		t.Run(name, func(t *testing.T) {
			err := ValidateRequest(&s)
			require.Error(t, err)
			assert.True(t, ierr.IsValidation(err))
		})
	}
}

func TestValidateRequestReportsJSONNames(t *testing.T) {
	err := ValidateRequest(&sample{Currency: "usd", Email: "nope"})
	require.Error(t, err)

	var details []string
	for _, sd := range errors.GetAllSafeDetails(err) {
		details = append(details, sd.SafeDetails...)
	}
	joined := strings.Join(details, " ")
	assert.Contains(t, joined, "currency")
	assert.Contains(t, joined, "customer_email")
}

func TestNewValidatorIsShared(t *testing.T) {
	assert.Same(t, NewValidator(), GetValidator())
}
