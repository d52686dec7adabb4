package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderRequestID     = "X-Request-ID"
	ContextRequestIDKey = "request_id"
)

// RequestID reuses a caller-supplied X-Request-ID or mints a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(ContextRequestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextRequestIDKey)
}
