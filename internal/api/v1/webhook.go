package v1

import (
	"io"
	"net/http"

	"github.com/bldrfitness/bldr/internal/api/dto"
	ierr "github.com/bldrfitness/bldr/internal/errors"
	"github.com/bldrfitness/bldr/internal/logger"
	"github.com/bldrfitness/bldr/internal/sentry"
	"github.com/bldrfitness/bldr/internal/service"
	"github.com/bldrfitness/bldr/internal/types"
	"github.com/gin-gonic/gin"
)

// maxWebhookBodyBytes caps the webhook body. Larger bodies are rejected
// before signature verification.
const maxWebhookBodyBytes = 512 * 1024

// WebhookHandler receives provider notifications. It answers in the
// provider's terms rather than the API error body: 400 for a bad signature so
// the delivery is dropped, 500 for anything else so it is retried.
type WebhookHandler struct {
	webhookService service.WebhookService
	sentry         *sentry.Service
	log            *logger.Logger
}

func NewWebhookHandler(webhookService service.WebhookService, sentrySvc *sentry.Service, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
		sentry:         sentrySvc,
		log:            log,
	}
}

// @Summary Handle Stripe webhook
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Stripe signature"
// @Success 200 {object} dto.WebhookResponse
// @Failure 400 {object} map[string]string
// @Failure 413 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /webhooks/stripe [post]
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	ctx := c.Request.Context()
	log := h.log.WithContext(ctx)

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes+1))
	if err != nil {
		log.Errorw("failed to read webhook body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if len(payload) > maxWebhookBodyBytes {
		log.Warnw("rejected oversized stripe webhook",
			"limit_bytes", maxWebhookBodyBytes,
			"content_length", c.Request.ContentLength,
		)
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
		return
	}

	result, err := h.webhookService.HandleStripeWebhook(ctx, payload, c.GetHeader(types.HeaderStripeSignature))
	if err != nil {
		if ierr.IsAuthentication(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
			return
		}

		log.Errorw("failed to process stripe webhook", "error", err, "error_code", ierr.Code(err))
		h.sentry.CaptureException(ctx, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
		return
	}

	log.Infow("processed stripe webhook",
		"event_id", result.EventID,
		"event_type", result.EventType,
		"outcome", result.Outcome,
	)
	c.JSON(http.StatusOK, dto.WebhookResponse{Received: true})
}
