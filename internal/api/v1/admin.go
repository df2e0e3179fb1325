package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ihsanfund/donations/internal/api/dto"
	ierr "github.com/ihsanfund/donations/internal/errors"
	"github.com/ihsanfund/donations/internal/logger"
	"github.com/ihsanfund/donations/internal/service"
	"github.com/ihsanfund/donations/internal/types"
)

type AdminHandler struct {
	donations      service.DonationService
	reconciliation service.ReconciliationService
	log            *logger.Logger
}

func NewAdminHandler(
	donations service.DonationService,
	reconciliation service.ReconciliationService,
	log *logger.Logger,
) *AdminHandler {
	return &AdminHandler{donations: donations, reconciliation: reconciliation, log: log}
}

func (h *AdminHandler) ListDonations(c *gin.Context) {
	var filter types.DonationFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.donations.ListDonations(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) CancelDonation(c *gin.Context) {
	resp, err := h.reconciliation.CancelDonation(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	h.log.WithContext(c.Request.Context()).Infow("donation cancelled by admin",
		"donation_id", resp.DonationID,
		"admin_id", types.GetUserID(c.Request.Context()),
		"changed", resp.Changed,
	)
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) ReconcileDonation(c *gin.Context) {
	resp, err := h.reconciliation.ReconcileDonation(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ReconcileBatch re-queries every open donation, optionally scoped to one project.
// An empty body reconciles with defaults.
func (h *AdminHandler) ReconcileBatch(c *gin.Context) {
	var req dto.BatchReconcileRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(ierr.WithError(err).
				WithHint("Invalid request format").
				Mark(ierr.ErrValidation))
			return
		}
	}

	resp, err := h.reconciliation.ReconcileBatch(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
