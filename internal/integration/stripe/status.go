package stripe

import (
	"strings"

	"github.com/ihsanfund/donations/internal/types"
	"github.com/stripe/stripe-go/v82"
)

// Checkout events that drive reconciliation
const (
	EventCheckoutSessionCompleted             stripe.EventType = "checkout.session.completed"
	EventCheckoutSessionAsyncPaymentSucceeded stripe.EventType = "checkout.session.async_payment_succeeded"
	EventCheckoutSessionAsyncPaymentFailed    stripe.EventType = "checkout.session.async_payment_failed"
	EventCheckoutSessionExpired               stripe.EventType = "checkout.session.expired"
)

var sessionStatuses = map[string]types.DonationStatus{
	"open":       types.DonationStatusPending,
	"created":    types.DonationStatusPending,
	"processing": types.DonationStatusProcessing,
	"paid":       types.DonationStatusCompleted,
	"complete":   types.DonationStatusCompleted,
}

var paymentIntentStatuses = map[string]types.DonationStatus{
	"succeeded":               types.DonationStatusCompleted,
	"processing":              types.DonationStatusProcessing,
	"requires_payment_method": types.DonationStatusPending,
	"requires_confirmation":   types.DonationStatusPending,
	"requires_action":         types.DonationStatusPending,
	"requires_capture":        types.DonationStatusPending,
}

// MapSessionStatus translates a checkout session level status. Unknown values map to FAILED.
func MapSessionStatus(status string) types.DonationStatus {
	if s, ok := sessionStatuses[normalize(status)]; ok {
		return s
	}
	return types.DonationStatusFailed
}

// MapCheckoutSession refines the session status with its payment status.
// A completed session paid by a delayed method (bank debit) is still unpaid.
func MapCheckoutSession(status, paymentStatus string) types.DonationStatus {
	if normalize(status) == "complete" && normalize(paymentStatus) == "unpaid" {
		return types.DonationStatusProcessing
	}
	return MapSessionStatus(status)
}

// MapPaymentIntentStatus translates a payment intent status. Unknown values, including canceled, map to FAILED.
func MapPaymentIntentStatus(status string) types.DonationStatus {
	if s, ok := paymentIntentStatuses[normalize(status)]; ok {
		return s
	}
	return types.DonationStatusFailed
}

// MapEvent returns the status a checkout event implies. handled is false for
// event types reconciliation does not act on.
func MapEvent(eventType stripe.EventType, session *stripe.CheckoutSession) (status types.DonationStatus, handled bool) {
	switch eventType {
	case EventCheckoutSessionCompleted:
		return MapCheckoutSession(string(session.Status), string(session.PaymentStatus)), true
	case EventCheckoutSessionAsyncPaymentSucceeded:
		return types.DonationStatusCompleted, true
	case EventCheckoutSessionAsyncPaymentFailed, EventCheckoutSessionExpired:
		return types.DonationStatusFailed, true
	default:
		return "", false
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
