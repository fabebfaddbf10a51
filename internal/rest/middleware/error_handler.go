package middleware

import (
	ierr "github.com/bldrfitness/bldr/internal/errors"
	"github.com/bldrfitness/bldr/internal/logger"
	"github.com/bldrfitness/bldr/internal/sentry"
	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error added with c.Error as the standard
// error body. Server errors are reported to Sentry.
func ErrorHandler(log *logger.Logger, sentrySvc *sentry.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		ctx := c.Request.Context()
		status := ierr.HTTPStatusFromErr(err)

		if status >= 500 {
			log.WithContext(ctx).Errorw("request failed",
				"error", err,
				"error_code", ierr.Code(err),
				"path", c.Request.URL.Path,
			)
			sentrySvc.CaptureException(ctx, err)
		} else {
			log.WithContext(ctx).Debugw("request rejected",
				"error", err,
				"error_code", ierr.Code(err),
				"status", status,
			)
		}

		if c.Writer.Written() {
			return
		}
		c.JSON(status, ierr.NewErrorResponse(err))
	}
}
