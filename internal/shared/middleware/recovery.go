package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"novelpedia-backend/internal/shared/response"
)

// Recovery turns a handler panic into a 500 and logs the stack with the
// request id so it can be matched to the access log line.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			log.Error().
				Str("request_id", c.GetString("request_id")).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			if !c.Writer.Written() {
				response.ErrorResponse(c, http.StatusInternalServerError, "SYS_001", "Internal server error")
			}
			c.Abort()
		}()

		c.Next()
	}
}
