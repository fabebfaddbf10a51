package v1

import (
	"net/http"

	"github.com/bldrfitness/bldr/internal/api/dto"
	ierr "github.com/bldrfitness/bldr/internal/errors"
	"github.com/bldrfitness/bldr/internal/logger"
	"github.com/bldrfitness/bldr/internal/service"
	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	checkoutService     service.CheckoutService
	subscriptionService service.SubscriptionService
	log                 *logger.Logger
}

func NewSubscriptionHandler(
	checkoutService service.CheckoutService,
	subscriptionService service.SubscriptionService,
	log *logger.Logger,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		checkoutService:     checkoutService,
		subscriptionService: subscriptionService,
		log:                 log,
	}
}

// @Summary Start a subscription
// @Description Creates a Stripe subscription for the caller. The local record is written when Stripe confirms it.
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSubscriptionRequest true "Subscription"
// @Success 201 {object} dto.CreateSubscriptionResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /subscriptions [post]
func (h *SubscriptionHandler) CreateSubscription(c *gin.Context) {
	var req dto.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.checkoutService.CreateSubscription(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get the caller's current subscription
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SubscriptionResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /subscriptions/current [get]
func (h *SubscriptionHandler) GetCurrentSubscription(c *gin.Context) {
	resp, err := h.subscriptionService.GetCurrent(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
