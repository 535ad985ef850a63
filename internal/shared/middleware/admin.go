package middleware

import (
	"github.com/gin-gonic/gin"

	"novelpedia-backend/internal/shared/response"
)

// AdminMiddleware only lets staff through. Must run after Authenticate.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Actor(c).IsStaff() {
			response.Forbidden(c, "Access denied: admin role required")
			c.Abort()
			return
		}

		c.Next()
	}
}
