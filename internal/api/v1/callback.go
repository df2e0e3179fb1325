package v1

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/ihsanfund/donations/internal/config"
	"github.com/ihsanfund/donations/internal/logger"
	"github.com/ihsanfund/donations/internal/service"
	"github.com/ihsanfund/donations/internal/types"
)

// PaymentCallbackHandler serves the urls donors land on when leaving the
// provider's hosted page, then redirects them to the frontend result page.
// Failures are logged and never shown to the donor as an API error.
type PaymentCallbackHandler struct {
	donations      service.DonationService
	reconciliation service.ReconciliationService
	redirectURL    string
	log            *logger.Logger
}

func NewPaymentCallbackHandler(
	donations service.DonationService,
	reconciliation service.ReconciliationService,
	cfg *config.Configuration,
	log *logger.Logger,
) *PaymentCallbackHandler {
	return &PaymentCallbackHandler{
		donations:      donations,
		reconciliation: reconciliation,
		redirectURL:    cfg.Payments.RedirectURL,
		log:            log,
	}
}

// MyFatoorahSuccess confirms the payment with the provider before redirecting,
// the donor's browser is not trusted to report the outcome
func (h *PaymentCallbackHandler) MyFatoorahSuccess(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	resp, err := h.reconciliation.ReconcileDonation(ctx, id)
	if err != nil {
		h.log.WithContext(ctx).Warnw("success callback reconcile failed",
			"donation_id", id,
			"payment_method", types.PaymentMethodMyFatoorah,
			"error", err,
		)
		h.redirectWithCurrentStatus(c, id)
		return
	}
	h.redirect(c, id, resp.Status)
}

// Cancelled handles the MyFatoorah error url and the Stripe cancel url
func (h *PaymentCallbackHandler) Cancelled(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	resp, err := h.reconciliation.HandleCancelCallback(ctx, id)
	if err != nil {
		h.log.WithContext(ctx).Warnw("cancel callback failed", "donation_id", id, "error", err)
		h.redirectWithCurrentStatus(c, id)
		return
	}
	h.redirect(c, id, resp.Status)
}

// StripeSuccess only redirects, checkout.session.completed drives the state
func (h *PaymentCallbackHandler) StripeSuccess(c *gin.Context) {
	h.redirectWithCurrentStatus(c, c.Param("id"))
}

func (h *PaymentCallbackHandler) redirectWithCurrentStatus(c *gin.Context, id string) {
	status := types.DonationStatusPending
	if d, err := h.donations.GetDonation(c.Request.Context(), id); err == nil {
		status = d.Status
	}
	h.redirect(c, id, status)
}

func (h *PaymentCallbackHandler) redirect(c *gin.Context, id string, status types.DonationStatus) {
	target, err := url.Parse(h.redirectURL)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"donation_id": id, "status": status})
		return
	}
	q := target.Query()
	q.Set("donation_id", id)
	q.Set("status", status.String())
	target.RawQuery = q.Encode()

	c.Redirect(http.StatusFound, target.String())
}
