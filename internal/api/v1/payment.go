package v1

import (
	"net/http"

	"github.com/bldrfitness/bldr/internal/api/dto"
	ierr "github.com/bldrfitness/bldr/internal/errors"
	"github.com/bldrfitness/bldr/internal/logger"
	"github.com/bldrfitness/bldr/internal/service"
	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService service.PaymentService
	log            *logger.Logger
}

func NewPaymentHandler(paymentService service.PaymentService, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		log:            log,
	}
}

// @Summary Calculate payment and create a payment intent
// @Description Computes the charge for a plan, billing period and optional coupon, and creates a Stripe payment intent when something is due
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CalculatePaymentRequest true "Payment calculation"
// @Success 200 {object} dto.CalculatePaymentResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /payments/intent [post]
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	var req dto.CalculatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.paymentService.CalculatePayment(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
