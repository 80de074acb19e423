package middleware

import (
	"github.com/gin-gonic/gin"

	"users-api/pkg/logger"
)

// RequestID propagates the caller's X-Request-ID or generates one, storing it
// on the request context and echoing it in the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(logger.RequestIDHeader)
		if id == "" {
			id = logger.NewRequestID()
		}

		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))
		c.Header(logger.RequestIDHeader, id)
		c.Next()
	}
}
