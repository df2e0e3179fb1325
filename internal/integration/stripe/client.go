package stripe

import (
	"context"

	"github.com/ihsanfund/donations/internal/config"
	"github.com/ihsanfund/donations/internal/logger"
	"github.com/stripe/stripe-go/v82"
)

// SessionAPI is the part of the Stripe client used for hosted checkout.
// *stripe.Client's V1CheckoutSessions satisfies it.
type SessionAPI interface {
	Create(ctx context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error)
	Retrieve(ctx context.Context, id string, params *stripe.CheckoutSessionRetrieveParams) (*stripe.CheckoutSession, error)
}

// Client holds the Stripe SDK client built once for the process
type Client struct {
	sessions      SessionAPI
	webhookSecret string
	logger        *logger.Logger
}

// NewClient creates the SDK client from the configured secret key
func NewClient(cfg *config.Configuration, logger *logger.Logger) *Client {
	sc := stripe.NewClient(cfg.Stripe.SecretKey, nil)
	if cfg.Stripe.SecretKey == "" {
		logger.Warn("stripe secret key is not configured, checkout requests will be rejected by stripe")
	}
	return NewClientWithSessions(sc.V1CheckoutSessions, cfg.Stripe.WebhookSecret, logger)
}

// NewClientWithSessions creates a client on an explicit session API
func NewClientWithSessions(sessions SessionAPI, webhookSecret string, logger *logger.Logger) *Client {
	return &Client{
		sessions:      sessions,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}
