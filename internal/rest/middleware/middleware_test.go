package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ihsanfund/donations/internal/config"
	ierr "github.com/ihsanfund/donations/internal/errors"
	"github.com/ihsanfund/donations/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler(logger.NewNoopLogger()))
	r.GET("/", handlers...)
	return r
}

func serve(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func TestErrorHandlerRendersHintAndDetails(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		_ = c.Error(ierr.NewError("project proj_1 closed at 2024-01-01").
			WithHint("Donations are closed for this project").
			WithReportableDetails(map[string]any{"project_id": "proj_1"}).
			Mark(ierr.ErrPreconditionFailed))
	})

	w := serve(r)
	require.Equal(t, http.StatusPreconditionFailed, w.Code)

	var resp ierr.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Donations are closed for this project", resp.Error.Display)
	assert.Equal(t, ierr.ErrCodePreconditionFailed, resp.Error.Code)
	assert.Equal(t, "proj_1", resp.Error.Details["project_id"])
	assert.NotContains(t, w.Body.String(), "2024-01-01")
}

func TestErrorHandlerHidesInternalErrors(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		_ = c.Error(ierr.NewError("pq: password authentication failed").Mark(ierr.ErrDatabase))
	})

	w := serve(r)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
	assert.Contains(t, w.Body.String(), ierr.ErrCodeDatabase)
}

func TestErrorHandlerLeavesWrittenResponses(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		c.String(http.StatusAccepted, "done")
		_ = c.Error(ierr.NewError("late").Mark(ierr.ErrValidation))
	})

	w := serve(r)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "done", w.Body.String())
}

func TestWebhookRateLimit(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.RateLimit.WebhookRPS = 0.001
	cfg.RateLimit.WebhookBurst = 1

	r := newEngine(WebhookRateLimit(cfg, logger.NewNoopLogger()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, serve(r).Code)

	w := serve(r)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate_limited")
}

func TestWebhookRateLimitDisabled(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.RateLimit.WebhookRPS = 0

	r := newEngine(WebhookRateLimit(cfg, logger.NewNoopLogger()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(r).Code)
	}
}
