package v1

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ihsanfund/donations/internal/api/dto"
	ierr "github.com/ihsanfund/donations/internal/errors"
	"github.com/ihsanfund/donations/internal/logger"
	"github.com/ihsanfund/donations/internal/service"
)

const (
	HeaderMyFatoorahSignature = "MyFatoorah-Signature"
	HeaderStripeSignature     = "Stripe-Signature"

	// providers never send bodies anywhere near this size
	maxWebhookBodyBytes = 1 << 20
)

// WebhookHandler receives provider notifications. Signatures are computed over
// the raw body so it is read as bytes, never bound.
type WebhookHandler struct {
	service service.ReconciliationService
	log     *logger.Logger
}

func NewWebhookHandler(service service.ReconciliationService, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{service: service, log: log}
}

func (h *WebhookHandler) HandleMyFatoorahWebhook(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}

	if err := h.service.HandleMyFatoorahWebhook(c.Request.Context(), body, c.GetHeader(HeaderMyFatoorahSignature)); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.WebhookAck{Received: true})
}

func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}

	if err := h.service.HandleStripeWebhook(c.Request.Context(), body, c.GetHeader(HeaderStripeSignature)); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.WebhookAck{Received: true})
}

func (h *WebhookHandler) readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes+1))
	if err != nil {
		h.log.WithContext(c.Request.Context()).Warnw("failed to read webhook body", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Could not read request body").
			Mark(ierr.ErrMalformedEvent))
		return nil, false
	}
	if len(body) == 0 || len(body) > maxWebhookBodyBytes {
		c.Error(ierr.NewError("webhook body is empty or too large").
			WithHint("Invalid webhook payload").
			WithReportableDetails(map[string]any{"size": len(body)}).
			Mark(ierr.ErrMalformedEvent))
		return nil, false
	}
	return body, true
}
