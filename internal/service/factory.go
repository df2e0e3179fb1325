package service

import (
	"github.com/ihsanfund/donations/internal/cache"
	"github.com/ihsanfund/donations/internal/config"
	"github.com/ihsanfund/donations/internal/domain/donation"
	"github.com/ihsanfund/donations/internal/domain/donor"
	"github.com/ihsanfund/donations/internal/domain/project"
	"github.com/ihsanfund/donations/internal/integration/base"
	"github.com/ihsanfund/donations/internal/integration/myfatoorah"
	"github.com/ihsanfund/donations/internal/integration/stripe"
	"github.com/ihsanfund/donations/internal/logger"
	"github.com/ihsanfund/donations/internal/postgres"
	"github.com/ihsanfund/donations/internal/publisher"
	"github.com/ihsanfund/donations/internal/sentry"
)

// MyFatoorahWebhooks authenticates MyFatoorah deliveries
type MyFatoorahWebhooks interface {
	VerifyWebhook(payload []byte, signature string) (bool, error)
}

// StripeWebhooks authenticates and decodes Stripe deliveries
type StripeWebhooks interface {
	ParseWebhook(payload []byte, signatureHeader string) (*stripe.WebhookEvent, error)
}

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient
	Sentry *sentry.Service

	// Repositories
	DonationRepo donation.Repository
	ProjectRepo  project.Repository
	DonorRepo    donor.Repository

	// Payment providers
	Gateways           *base.Registry
	MyFatoorahWebhooks MyFatoorahWebhooks
	StripeWebhooks     StripeWebhooks

	// Processed webhook event ids
	WebhookCache cache.Cache

	EventPublisher publisher.DonationEventPublisher
}

// NewServiceParams is the fx constructor for ServiceParams
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	sentry *sentry.Service,
	donationRepo donation.Repository,
	projectRepo project.Repository,
	donorRepo donor.Repository,
	gateways *base.Registry,
	mf *myfatoorah.Gateway,
	st *stripe.Gateway,
	webhookCache cache.Cache,
	eventPublisher publisher.DonationEventPublisher,
) ServiceParams {
	return ServiceParams{
		Logger:             logger,
		Config:             config,
		DB:                 db,
		Sentry:             sentry,
		DonationRepo:       donationRepo,
		ProjectRepo:        projectRepo,
		DonorRepo:          donorRepo,
		Gateways:           gateways,
		MyFatoorahWebhooks: mf,
		StripeWebhooks:     st,
		WebhookCache:       webhookCache,
		EventPublisher:     eventPublisher,
	}
}
