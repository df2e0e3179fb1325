package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ihsanfund/donations/internal/api/dto"
	ierr "github.com/ihsanfund/donations/internal/errors"
	"github.com/ihsanfund/donations/internal/logger"
	"github.com/ihsanfund/donations/internal/service"
	"github.com/ihsanfund/donations/internal/types"
)

type DonationHandler struct {
	service service.DonationService
	log     *logger.Logger
}

func NewDonationHandler(service service.DonationService, log *logger.Logger) *DonationHandler {
	return &DonationHandler{service: service, log: log}
}

// CreateDonation responds 201 with the donation id and the provider payment link
func (h *DonationHandler) CreateDonation(c *gin.Context) {
	var req dto.CreateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateDonation(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *DonationHandler) GetDonation(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Donation ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetDonation(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetPaymentStatus proxies a status query to the provider without touching the donation
func (h *DonationHandler) GetPaymentStatus(c *gin.Context) {
	method := types.PaymentMethod(strings.ToUpper(c.Param("method")))

	resp, err := h.service.GetPaymentStatus(c.Request.Context(), method, c.Param("payment_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
