package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ihsanfund/donations/internal/config"
	ierr "github.com/ihsanfund/donations/internal/errors"
	"github.com/ihsanfund/donations/internal/logger"
	"golang.org/x/time/rate"
)

// WebhookRateLimit caps the rate of provider deliveries. Rejected requests get
// 429 so the provider retries later.
func WebhookRateLimit(cfg *config.Configuration, log *logger.Logger) gin.HandlerFunc {
	if cfg.RateLimit.WebhookRPS <= 0 {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	burst := cfg.RateLimit.WebhookBurst
	if burst <= 0 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit.WebhookRPS), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			log.WithContext(c.Request.Context()).Warnw("webhook rate limit exceeded",
				"path", c.FullPath(),
				"client_ip", c.ClientIP(),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ierr.ErrorResponse{
				Success: false,
				Error: ierr.ErrorDetail{
					Display: "Too many requests",
					Code:    "rate_limited",
				},
			})
			return
		}
		c.Next()
	}
}
