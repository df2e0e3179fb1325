package api

import (
	"github.com/gin-gonic/gin"
	v1 "github.com/ihsanfund/donations/internal/api/v1"
	"github.com/ihsanfund/donations/internal/auth"
	"github.com/ihsanfund/donations/internal/config"
	"github.com/ihsanfund/donations/internal/logger"
	"github.com/ihsanfund/donations/internal/rest/middleware"
	"github.com/ihsanfund/donations/internal/types"
)

type Handlers struct {
	Health   *v1.HealthHandler
	Donation *v1.DonationHandler
	Webhook  *v1.WebhookHandler
	Callback *v1.PaymentCallbackHandler
	Admin    *v1.AdminHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger, validator *auth.Validator) *gin.Engine {
	if cfg.Deployment.Mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.SentryMiddleware(cfg),
		middleware.RequestIDMiddleware,
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(cfg),
		middleware.ErrorHandler(logger),
	)

	router.GET("/health", handlers.Health.Health)

	v1Router := router.Group("/v1")
	{
		donations := v1Router.Group("/donations")
		{
			donations.POST("", handlers.Donation.CreateDonation)
			donations.GET("/:id", handlers.Donation.GetDonation)
		}

		payments := v1Router.Group("/payments")
		{
			payments.GET("/status/:method/:payment_id", handlers.Donation.GetPaymentStatus)

			// donor browser redirects from the hosted payment pages
			payments.GET("/myfatoorah/success/:id", handlers.Callback.MyFatoorahSuccess)
			payments.GET("/myfatoorah/error/:id", handlers.Callback.Cancelled)
			payments.GET("/stripe/success/:id", handlers.Callback.StripeSuccess)
			payments.GET("/stripe/cancel/:id", handlers.Callback.Cancelled)
		}

		webhooks := v1Router.Group("/webhooks")
		webhooks.Use(middleware.WebhookRateLimit(cfg, logger))
		{
			webhooks.POST("/myfatoorah", handlers.Webhook.HandleMyFatoorahWebhook)
			webhooks.POST("/stripe", handlers.Webhook.HandleStripeWebhook)
		}

		admin := v1Router.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware(validator, logger))
		{
			admin.GET("/donations", handlers.Admin.ListDonations)
			admin.POST("/donations/reconcile", handlers.Admin.ReconcileBatch)
			admin.POST("/donations/:id/cancel", handlers.Admin.CancelDonation)
			admin.POST("/donations/:id/reconcile", handlers.Admin.ReconcileDonation)
		}
	}

	return router
}
