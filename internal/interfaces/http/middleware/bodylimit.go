package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolpay/backend/internal/interfaces/http/dto"
)

// BodyLimit returns a middleware that rejects request bodies over
// maxBytes. Billing payloads are small, the default keeps bulk invoice
// generation requests well within bounds.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse("REQUEST_TOO_LARGE", "Request body exceeds maximum allowed size"))
			return
		}

		// Streaming requests without Content-Length still get capped.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
