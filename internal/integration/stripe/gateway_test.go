package stripe

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ihsanfund/donations/internal/config"
	ierr "github.com/ihsanfund/donations/internal/errors"
	"github.com/ihsanfund/donations/internal/integration/base"
	"github.com/ihsanfund/donations/internal/logger"
	"github.com/ihsanfund/donations/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

const testWebhookSecret = "whsec_unit"

type fakeSessions struct {
	created   []*stripe.CheckoutSessionCreateParams
	createErr error
	sessions  map[string]*stripe.CheckoutSession
}

func (f *fakeSessions) Create(_ context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error) {
	f.created = append(f.created, params)
	if f.createErr != nil {
		return nil, f.createErr
	}
	id := fmt.Sprintf("cs_test_%d", len(f.created))
	return &stripe.CheckoutSession{
		ID:          id,
		URL:         "https://checkout.stripe.com/c/pay/" + id,
		Status:      stripe.CheckoutSessionStatusOpen,
		AmountTotal: *params.LineItems[0].PriceData.UnitAmount,
		Currency:    stripe.Currency(*params.LineItems[0].PriceData.Currency),
		Metadata:    params.Metadata,
	}, nil
}

func (f *fakeSessions) Retrieve(_ context.Context, id string, _ *stripe.CheckoutSessionRetrieveParams) (*stripe.CheckoutSession, error) {
	if s, ok := f.sessions[id]; ok {
		return s, nil
	}
	return nil, &stripe.Error{HTTPStatusCode: 404, Code: stripe.ErrorCodeResourceMissing, Msg: "No such checkout session"}
}

type GatewaySuite struct {
	suite.Suite
	sessions *fakeSessions
	gateway  *Gateway
}

func TestGateway(t *testing.T) {
	suite.Run(t, new(GatewaySuite))
}

func (s *GatewaySuite) SetupTest() {
	cfg := config.GetDefaultConfig()
	cfg.Payments.PublicBaseURL = "https://api.example.org"

	s.sessions = &fakeSessions{sessions: map[string]*stripe.CheckoutSession{}}
	log := logger.NewNoopLogger()
	s.gateway = NewGateway(NewClientWithSessions(s.sessions, testWebhookSecret, log), cfg, log)
}

func (s *GatewaySuite) TestCreatePayment() {
	result, err := s.gateway.CreatePayment(context.Background(), &base.CreatePaymentRequest{
		Amount:        decimal.RequireFromString("50.00"),
		Currency:      "USD",
		DonationID:    "don_1",
		ProjectTitle:  "School books",
		CustomerEmail: "a@example.com",
	})
	s.Require().NoError(err)
	s.Equal("cs_test_1", result.ID)
	s.Equal("https://checkout.stripe.com/c/pay/cs_test_1", result.URL)
	s.Equal(types.DonationStatusPending, result.Status)
	s.True(decimal.RequireFromString("50").Equal(*result.Amount))
	s.Equal("USD", result.Currency)
	s.NotEmpty(result.Raw)

	s.Require().Len(s.sessions.created, 1)
	params := s.sessions.created[0]
	s.Equal(int64(5000), *params.LineItems[0].PriceData.UnitAmount)
	s.Equal("usd", *params.LineItems[0].PriceData.Currency)
	s.Equal("School books", *params.LineItems[0].PriceData.ProductData.Name)
	s.Equal("don_1", *params.ClientReferenceID)
	s.Equal("don_1", params.Metadata["donation_id"])
	s.Equal("a@example.com", *params.CustomerEmail)
	s.Equal("https://api.example.org/v1/payments/stripe/success/don_1", *params.SuccessURL)
	s.Equal("https://api.example.org/v1/payments/stripe/cancel/don_1", *params.CancelURL)
	s.Require().NotNil(params.IdempotencyKey)

	// a replay for the same donation reuses the key
	_, err = s.gateway.CreatePayment(context.Background(), &base.CreatePaymentRequest{
		Amount:       decimal.RequireFromString("50"),
		Currency:     "USD",
		DonationID:   "don_1",
		ProjectTitle: "School books",
	})
	s.Require().NoError(err)
	s.Equal(*params.IdempotencyKey, *s.sessions.created[1].IdempotencyKey)
}

func (s *GatewaySuite) TestCreatePaymentDeclined() {
	s.sessions.createErr = &stripe.Error{HTTPStatusCode: 400, Code: stripe.ErrorCodeParameterInvalidInteger, Msg: "Invalid integer"}

	_, err := s.gateway.CreatePayment(context.Background(), &base.CreatePaymentRequest{
		Amount:     decimal.RequireFromString("1"),
		Currency:   "USD",
		DonationID: "don_2",
	})
	s.Require().Error(err)
	s.True(ierr.IsPaymentGateway(err))
}

func (s *GatewaySuite) TestGetPaymentStatus() {
	s.sessions.sessions["cs_paid"] = &stripe.CheckoutSession{
		ID: "cs_paid", Status: "complete", PaymentStatus: "paid", AmountTotal: 2550, Currency: "usd",
	}
	s.sessions.sessions["cs_pending_debit"] = &stripe.CheckoutSession{
		ID: "cs_pending_debit", Status: "complete", PaymentStatus: "unpaid",
		PaymentIntent: &stripe.PaymentIntent{Status: stripe.PaymentIntentStatusProcessing},
	}
	s.sessions.sessions["cs_canceled"] = &stripe.CheckoutSession{
		ID: "cs_canceled", Status: "complete", PaymentStatus: "unpaid",
		PaymentIntent: &stripe.PaymentIntent{Status: stripe.PaymentIntentStatusCanceled},
	}

	result, err := s.gateway.GetPaymentStatus(context.Background(), "cs_paid")
	s.Require().NoError(err)
	s.Equal(types.DonationStatusCompleted, result.Status)
	s.True(decimal.RequireFromString("25.50").Equal(*result.Amount))

	result, err = s.gateway.GetPaymentStatus(context.Background(), "cs_pending_debit")
	s.Require().NoError(err)
	s.Equal(types.DonationStatusProcessing, result.Status)

	result, err = s.gateway.GetPaymentStatus(context.Background(), "cs_canceled")
	s.Require().NoError(err)
	s.Equal(types.DonationStatusFailed, result.Status)

	_, err = s.gateway.GetPaymentStatus(context.Background(), "cs_missing")
	s.True(ierr.IsPaymentGateway(err))
}

func (s *GatewaySuite) TestParseWebhook() {
	payload := checkoutEvent("evt_1", "checkout.session.completed", "cs_1", "complete", "paid")
	event, err := s.gateway.ParseWebhook(payload, sign(payload, testWebhookSecret, time.Now()))
	s.Require().NoError(err)
	s.Equal("evt_1", event.ID)
	s.Equal("cs_1", event.SessionID)
	s.True(event.Handled)
	s.True(event.Verified)
	s.Equal(types.DonationStatusCompleted, event.Status)

	unrelated := []byte(`{"id":"evt_2","object":"event","type":"customer.created","data":{"object":{"id":"cus_1","object":"customer"}}}`)
	event, err = s.gateway.ParseWebhook(unrelated, sign(unrelated, testWebhookSecret, time.Now()))
	s.Require().NoError(err)
	s.False(event.Handled)
	s.Empty(event.SessionID)
}

func (s *GatewaySuite) TestParseWebhookRejects() {
	payload := checkoutEvent("evt_1", "checkout.session.completed", "cs_1", "complete", "paid")

	_, err := s.gateway.ParseWebhook(payload, sign(payload, "whsec_other", time.Now()))
	s.True(ierr.IsInvalidSignature(err), "wrong secret")

	_, err = s.gateway.ParseWebhook(payload, "")
	s.True(ierr.IsInvalidSignature(err), "missing header")

	_, err = s.gateway.ParseWebhook(payload, sign(payload, testWebhookSecret, time.Now().Add(-time.Hour)))
	s.True(ierr.IsInvalidSignature(err), "replayed outside tolerance")

	tampered := checkoutEvent("evt_1", "checkout.session.completed", "cs_2", "complete", "paid")
	_, err = s.gateway.ParseWebhook(tampered, sign(payload, testWebhookSecret, time.Now()))
	s.True(ierr.IsInvalidSignature(err), "body changed after signing")

	noSession := checkoutEvent("evt_3", "checkout.session.completed", "", "complete", "paid")
	_, err = s.gateway.ParseWebhook(noSession, sign(noSession, testWebhookSecret, time.Now()))
	s.True(ierr.IsMalformedEvent(err))
}

func (s *GatewaySuite) TestParseWebhookWithoutSecret() {
	gw := NewGateway(NewClientWithSessions(s.sessions, "", logger.NewNoopLogger()), config.GetDefaultConfig(), logger.NewNoopLogger())

	payload := checkoutEvent("evt_1", "checkout.session.expired", "cs_1", "expired", "unpaid")
	event, err := gw.ParseWebhook(payload, "")
	s.Require().NoError(err)
	s.False(event.Verified)
	s.Equal(types.DonationStatusFailed, event.Status)

	_, err = gw.ParseWebhook([]byte(`not json`), "")
	s.True(ierr.IsMalformedEvent(err))
}

func checkoutEvent(eventID, eventType, sessionID, status, paymentStatus string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"object": "event",
		"type": %q,
		"data": {"object": {"id": %q, "object": "checkout.session", "status": %q, "payment_status": %q}}
	}`, eventID, eventType, sessionID, status, paymentStatus))
}

func sign(payload []byte, secret string, at time.Time) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: at,
	}).Header
}
