package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKey is the gin context key the request identifier is stored under.
// rest.Context.RequestID reads the same key.
const ContextKey = "request_id"

const requestIDHeader = "X-Request-ID"

// RequestID attaches a correlation identifier to every request and echoes it
// in the response. An identifier supplied by the caller through X-Request-ID
// is kept, so IDs stay stable across proxies; otherwise a fresh one is
// issued.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(ContextKey, id)
		c.Header(requestIDHeader, id)

		c.Next()
	}
}
