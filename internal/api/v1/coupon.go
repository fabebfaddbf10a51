package v1

import (
	"net/http"

	"github.com/bldrfitness/bldr/internal/api/dto"
	ierr "github.com/bldrfitness/bldr/internal/errors"
	"github.com/bldrfitness/bldr/internal/logger"
	"github.com/bldrfitness/bldr/internal/service"
	"github.com/gin-gonic/gin"
)

type CouponHandler struct {
	discountService service.DiscountService
	log             *logger.Logger
}

func NewCouponHandler(discountService service.DiscountService, log *logger.Logger) *CouponHandler {
	return &CouponHandler{
		discountService: discountService,
		log:             log,
	}
}

// @Summary Validate a coupon code
// @Tags Coupons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ValidateCouponRequest true "Coupon code"
// @Success 200 {object} dto.ValidateCouponResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /coupons/validate [post]
func (h *CouponHandler) ValidateCoupon(c *gin.Context) {
	var req dto.ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.discountService.Validate(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
