package stripe

import (
	"encoding/json"
	"errors"

	ierr "github.com/ihsanfund/donations/internal/errors"
	"github.com/ihsanfund/donations/internal/types"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// SignatureHeader carries the timestamped signature of the raw body
const SignatureHeader = "Stripe-Signature"

// WebhookEvent is a decoded checkout event
type WebhookEvent struct {
	ID        string
	Type      stripe.EventType
	SessionID string
	// Handled is false for event types that carry no status change
	Handled        bool
	Status         types.DonationStatus
	ProviderStatus string
	Verified       bool
}

// ParseWebhook authenticates and decodes a webhook delivery. Without a
// configured secret the event is decoded unverified.
func (g *Gateway) ParseWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error) {
	var event stripe.Event
	verified := false

	if secret := g.client.webhookSecret; secret != "" {
		ev, err := webhook.ConstructEventWithOptions(payload, signatureHeader, secret, webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		})
		if err != nil {
			if isSignatureError(err) {
				return nil, ierr.WithError(err).
					WithHint("Invalid webhook signature").
					Mark(ierr.ErrInvalidSignature)
			}
			return nil, ierr.WithError(err).
				WithHint("Invalid webhook payload").
				Mark(ierr.ErrMalformedEvent)
		}
		event = ev
		verified = true
	} else {
		g.logger.Warn("stripe webhook secret not configured, accepting unverified event")
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Invalid webhook payload").
				Mark(ierr.ErrMalformedEvent)
		}
	}

	out := &WebhookEvent{
		ID:       event.ID,
		Type:     event.Type,
		Verified: verified,
	}

	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, ierr.NewError("stripe event has no data object").
			WithHint("Invalid webhook payload").
			WithReportableDetails(map[string]any{"event_id": event.ID, "type": string(event.Type)}).
			Mark(ierr.ErrMalformedEvent)
	}

	var session stripe.CheckoutSession
	status, handled := types.DonationStatus(""), false
	switch event.Type {
	case EventCheckoutSessionCompleted,
		EventCheckoutSessionAsyncPaymentSucceeded,
		EventCheckoutSessionAsyncPaymentFailed,
		EventCheckoutSessionExpired:
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Invalid checkout session in webhook").
				Mark(ierr.ErrMalformedEvent)
		}
		if session.ID == "" {
			return nil, ierr.NewError("checkout session event has no session id").
				WithHint("Invalid checkout session in webhook").
				WithReportableDetails(map[string]any{"event_id": event.ID}).
				Mark(ierr.ErrMalformedEvent)
		}
		status, handled = MapEvent(event.Type, &session)
	}

	out.SessionID = session.ID
	out.Handled = handled
	out.Status = status
	out.ProviderStatus = string(session.Status)
	return out, nil
}

func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrTooOld)
}
