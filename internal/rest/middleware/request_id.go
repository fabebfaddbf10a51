package middleware

import (
	"github.com/bldrfitness/bldr/internal/types"
	"github.com/gin-gonic/gin"
)

// RequestIDMiddleware reuses the caller's X-Request-ID or generates one, and
// stores it on the request context and the response.
func RequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST)
	}

	c.Request = c.Request.WithContext(types.SetRequestID(c.Request.Context(), requestID))
	c.Header(types.HeaderRequestID, requestID)
	c.Next()
}
