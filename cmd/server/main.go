package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ihsanfund/donations/internal/api"
	v1 "github.com/ihsanfund/donations/internal/api/v1"
	"github.com/ihsanfund/donations/internal/auth"
	"github.com/ihsanfund/donations/internal/cache"
	"github.com/ihsanfund/donations/internal/config"
	"github.com/ihsanfund/donations/internal/integration"
	"github.com/ihsanfund/donations/internal/logger"
	"github.com/ihsanfund/donations/internal/postgres"
	"github.com/ihsanfund/donations/internal/publisher"
	"github.com/ihsanfund/donations/internal/repository"
	"github.com/ihsanfund/donations/internal/sentry"
	"github.com/ihsanfund/donations/internal/service"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			auth.NewValidator,
			cache.NewInMemoryCache,

			// Repositories
			repository.NewDonationRepository,
			repository.NewProjectRepository,
			repository.NewDonorRepository,
		),
		sentry.Module(),
		postgres.Module(),
		integration.Module(),
		publisher.Module(),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,
			service.NewDonationService,
			service.NewReconciliationService,
		),
	)

	opts = append(opts,
		fx.Provide(
			provideHandlers,
			api.NewRouter,
		),
		fx.Invoke(
			closeDB,
			startAPIServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideHandlers(
	cfg *config.Configuration,
	logger *logger.Logger,
	donationService service.DonationService,
	reconciliationService service.ReconciliationService,
) api.Handlers {
	return api.Handlers{
		Health:   v1.NewHealthHandler(logger),
		Donation: v1.NewDonationHandler(donationService, logger),
		Webhook:  v1.NewWebhookHandler(reconciliationService, logger),
		Callback: v1.NewPaymentCallbackHandler(donationService, reconciliationService, cfg, logger),
		Admin:    v1.NewAdminHandler(donationService, reconciliationService, logger),
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server", "address", cfg.Server.Address, "mode", cfg.Deployment.Mode)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return srv.Shutdown(ctx)
		},
	})
}

func closeDB(lc fx.Lifecycle, db *postgres.DB) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			db.Close()
			return nil
		},
	})
}
