package testutil

import (
	"context"
	"time"

	"github.com/ihsanfund/donations/internal/cache"
	"github.com/ihsanfund/donations/internal/config"
	"github.com/ihsanfund/donations/internal/domain/donor"
	"github.com/ihsanfund/donations/internal/domain/project"
	"github.com/ihsanfund/donations/internal/httpclient"
	"github.com/ihsanfund/donations/internal/integration/base"
	"github.com/ihsanfund/donations/internal/integration/myfatoorah"
	"github.com/ihsanfund/donations/internal/integration/stripe"
	"github.com/ihsanfund/donations/internal/logger"
	"github.com/ihsanfund/donations/internal/sentry"
	"github.com/ihsanfund/donations/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const (
	TestMyFatoorahSecret = "mf_test_webhook_secret"
	TestStripeSecret     = "whsec_test_secret"
)

// Stores holds all the repository fakes for testing
type Stores struct {
	DonationRepo *InMemoryDonationStore
	ProjectRepo  *InMemoryProjectStore
	DonorRepo    *InMemoryDonorStore
}

// Gateways holds the scriptable providers and the webhook parsers
type Gateways struct {
	Registry   *base.Registry
	MyFatoorah *MockGateway
	Stripe     *MockGateway

	MyFatoorahWebhooks *myfatoorah.Gateway
	StripeWebhooks     *stripe.Gateway
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	stores    Stores
	gateways  Gateways
	publisher *InMemoryPublisher
	cache     *cache.InMemoryCache
	db        *MockPostgresClient
	logger    *logger.Logger
	config    *config.Configuration
	sentry    *sentry.Service
	now       time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelInfo
	cfg.MyFatoorah.WebhookSecret = TestMyFatoorahSecret
	cfg.Stripe.WebhookSecret = TestStripeSecret
	s.config = cfg

	var err error
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
	s.sentry = sentry.NewSentryService(cfg, s.logger)
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.setupGateways()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = context.Background()
	s.ctx = types.SetUserID(s.ctx, types.DefaultUserID)
	s.ctx = types.SetRequestID(s.ctx, types.GenerateUUID())
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		DonationRepo: NewInMemoryDonationStore(),
		ProjectRepo:  NewInMemoryProjectStore(),
		DonorRepo:    NewInMemoryDonorStore(),
	}
	s.db = NewMockPostgresClient(s.stores.DonationRepo, s.stores.ProjectRepo, s.stores.DonorRepo)
	s.publisher = NewInMemoryPublisher()
	s.cache = cache.NewInMemoryCacheWithTTL(time.Minute)
}

func (s *BaseServiceTestSuite) setupGateways() {
	mf := NewMockGateway(types.PaymentMethodMyFatoorah)
	st := NewMockGateway(types.PaymentMethodStripe)

	mfClient := myfatoorah.NewClientWithHTTP(s.config.MyFatoorah, httpclient.NewDefaultClient(), nil, s.logger)
	stClient := stripe.NewClientWithSessions(nil, s.config.Stripe.WebhookSecret, s.logger)

	s.gateways = Gateways{
		Registry:           base.NewRegistry(mf, st),
		MyFatoorah:         mf,
		Stripe:             st,
		MyFatoorahWebhooks: myfatoorah.NewGateway(mfClient, s.config, s.logger),
		StripeWebhooks:     stripe.NewGateway(stClient, s.config, s.logger),
	}
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.DonationRepo.Clear()
	s.stores.ProjectRepo.Clear()
	s.stores.DonorRepo.Clear()
	s.publisher.Clear()
	s.cache.Flush(s.ctx)
}

// CreateTestProject seeds an active project with zero totals
func (s *BaseServiceTestSuite) CreateTestProject(id string, active bool) *project.Project {
	p := &project.Project{
		ID:               id,
		Title:            "Water well " + id,
		IsDonationActive: active,
		CurrentAmount:    decimal.Zero,
		CreatedAt:        s.now,
		UpdatedAt:        s.now,
	}
	s.Require().NoError(s.stores.ProjectRepo.Seed(s.ctx, p))
	return p
}

// CreateTestDonor seeds a donor
func (s *BaseServiceTestSuite) CreateTestDonor(id string) *donor.Donor {
	d := &donor.Donor{
		ID:        id,
		Name:      "Donor " + id,
		Email:     id + "@example.com",
		Phone:     "+96500000000",
		CreatedAt: s.now,
	}
	s.Require().NoError(s.stores.DonorRepo.Seed(s.ctx, d))
	return d
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetDB returns the transactional fake
func (s *BaseServiceTestSuite) GetDB() *MockPostgresClient {
	return s.db
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetGateways returns the scriptable providers
func (s *BaseServiceTestSuite) GetGateways() Gateways {
	return s.gateways
}

// GetPublisher returns the recording event publisher
func (s *BaseServiceTestSuite) GetPublisher() *InMemoryPublisher {
	return s.publisher
}

// GetCache returns the webhook dedup cache
func (s *BaseServiceTestSuite) GetCache() *cache.InMemoryCache {
	return s.cache
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetSentry returns a disabled sentry service
func (s *BaseServiceTestSuite) GetSentry() *sentry.Service {
	return s.sentry
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
