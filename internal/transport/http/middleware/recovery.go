package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"casedesk/internal/transport/http/response"
)

// Recovery turns a handler panic into a 500 JSON body so the listener keeps serving.
func Recovery(logger *slog.Logger, expose bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic recovered",
					"request_id", GetRequestID(c),
					"path", c.Request.URL.Path,
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				response.Abort(c, http.StatusInternalServerError, "Something went wrong!", fmt.Errorf("%v", rec), expose)
			}
		}()
		c.Next()
	}
}
