package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sevapay.backend/internal/interfaces/http/response"
	"sevapay.backend/pkg/redis"
)

const idempotencyHeader = "X-Idempotency-Key"

var idempotencySetNX = redis.SetNX

// Idempotency rejects a repeated mutating request carrying the same
// idempotency key within the window. The key is optional; callers that do
// not send one get no protection.
func Idempotency(window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(idempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		ok, err := idempotencySetNX(c.Request.Context(), "idempotency:"+c.FullPath()+":"+key, "1", window)
		if err != nil {
			// Redis trouble must not block payments.
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusConflict, response.Response{Success: false, Error: "Duplicate request"})
			return
		}
		c.Next()
	}
}
