package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/bldrfitness/bldr/internal/api/dto"
	"github.com/bldrfitness/bldr/internal/logger"
	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by the postgres client.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db  Pinger
	log *logger.Logger
}

func NewHealthHandler(db Pinger, log *logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, log: log}
}

// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.log.WithContext(ctx).Errorw("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok"})
}
