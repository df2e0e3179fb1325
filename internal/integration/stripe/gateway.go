package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ihsanfund/donations/internal/config"
	ierr "github.com/ihsanfund/donations/internal/errors"
	"github.com/ihsanfund/donations/internal/idempotency"
	"github.com/ihsanfund/donations/internal/integration/base"
	"github.com/ihsanfund/donations/internal/logger"
	"github.com/ihsanfund/donations/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
)

var hundred = decimal.NewFromInt(100)

// Gateway is the hosted checkout session provider
type Gateway struct {
	client   *Client
	payments config.PaymentsConfig
	keys     *idempotency.Generator
	logger   *logger.Logger
}

var _ base.Gateway = (*Gateway)(nil)

func NewGateway(client *Client, cfg *config.Configuration, logger *logger.Logger) *Gateway {
	return &Gateway{
		client:   client,
		payments: cfg.Payments,
		keys:     idempotency.NewGenerator(),
		logger:   logger,
	}
}

func (g *Gateway) Method() types.PaymentMethod {
	return types.PaymentMethodStripe
}

// ReturnURL builds the success or cancel url, both carrying the donation id as suffix
func (g *Gateway) ReturnURL(outcome, donationID string) string {
	return fmt.Sprintf("%s/v1/payments/stripe/%s/%s", strings.TrimRight(g.payments.PublicBaseURL, "/"), outcome, donationID)
}

// ToMinorUnits converts a major unit amount to the integer cents Stripe expects
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FromMinorUnits converts Stripe cents back to a major unit amount
func FromMinorUnits(amount int64) decimal.Decimal {
	return decimal.NewFromInt(amount).Div(hundred)
}

func (g *Gateway) CreatePayment(ctx context.Context, req *base.CreatePaymentRequest) (*base.PaymentResult, error) {
	metadata := map[string]string{
		"donation_id": req.DonationID,
	}

	params := &stripe.CheckoutSessionCreateParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(req.DonationID),
		SuccessURL:        stripe.String(g.ReturnURL("success", req.DonationID)),
		CancelURL:         stripe.String(g.ReturnURL("cancel", req.DonationID)),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency: stripe.String(strings.ToLower(req.Currency)),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name: stripe.String(req.ProjectTitle),
					},
					UnitAmount: stripe.Int64(ToMinorUnits(req.Amount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: metadata,
		PaymentIntentData: &stripe.CheckoutSessionCreatePaymentIntentDataParams{
			Metadata: metadata,
		},
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	// one session per donation even if the request is replayed
	params.SetIdempotencyKey(g.keys.GenerateKey(idempotency.ScopeCheckoutSession, map[string]interface{}{
		"donation_id": req.DonationID,
		"amount":      req.Amount.StringFixed(2),
		"currency":    req.Currency,
	}))

	g.logger.Infow("creating stripe checkout session",
		"donation_id", req.DonationID,
		"amount", req.Amount.String(),
		"unit_amount", ToMinorUnits(req.Amount),
		"currency", req.Currency,
	)

	session, err := g.client.sessions.Create(ctx, params)
	if err != nil {
		g.logger.Errorw("failed to create stripe checkout session",
			"error", err,
			"donation_id", req.DonationID,
		)
		return nil, gatewayError(err, "Unable to create Stripe checkout session", map[string]interface{}{
			"donation_id": req.DonationID,
		})
	}

	if session.ID == "" || session.URL == "" {
		return nil, ierr.NewError("stripe session has no id or url").
			WithHint("Stripe returned an incomplete checkout session").
			WithReportableDetails(map[string]any{"donation_id": req.DonationID}).
			Mark(ierr.ErrPaymentGateway)
	}

	return g.toResult(session, req.Amount), nil
}

func (g *Gateway) GetPaymentStatus(ctx context.Context, providerID string) (*base.PaymentResult, error) {
	params := &stripe.CheckoutSessionRetrieveParams{}
	params.AddExpand("payment_intent")

	session, err := g.client.sessions.Retrieve(ctx, providerID, params)
	if err != nil {
		g.logger.Errorw("failed to retrieve stripe checkout session",
			"error", err,
			"session_id", providerID,
		)
		return nil, gatewayError(err, "Unable to retrieve Stripe checkout session", map[string]interface{}{
			"session_id": providerID,
		})
	}

	result := g.toResult(session, decimal.Zero)
	// a completed but unpaid session defers to its payment intent
	if result.Status == types.DonationStatusProcessing && session.PaymentIntent != nil && session.PaymentIntent.Status != "" {
		result.Status = MapPaymentIntentStatus(string(session.PaymentIntent.Status))
		result.ProviderStatus = string(session.PaymentIntent.Status)
	}
	return result, nil
}

func (g *Gateway) toResult(session *stripe.CheckoutSession, fallback decimal.Decimal) *base.PaymentResult {
	amount := fallback
	if session.AmountTotal > 0 {
		amount = FromMinorUnits(session.AmountTotal)
	}

	raw, err := json.Marshal(session)
	if err != nil {
		g.logger.Warnw("failed to snapshot stripe session", "error", err, "session_id", session.ID)
	}

	return &base.PaymentResult{
		ID:             session.ID,
		URL:            session.URL,
		Status:         MapCheckoutSession(string(session.Status), string(session.PaymentStatus)),
		ProviderStatus: string(session.Status),
		Amount:         &amount,
		Currency:       strings.ToUpper(string(session.Currency)),
		Metadata:       session.Metadata,
		Raw:            types.JSONB(raw),
	}
}

func gatewayError(err error, hint string, details map[string]interface{}) error {
	var stripeErr *stripe.Error
	if ierr.As(err, &stripeErr) {
		details["stripe_code"] = string(stripeErr.Code)
		details["status_code"] = stripeErr.HTTPStatusCode
		details["message"] = stripeErr.Msg
	}
	return ierr.WithError(err).
		WithHint(hint).
		WithReportableDetails(details).
		Mark(ierr.ErrPaymentGateway)
}
