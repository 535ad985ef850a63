package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"novelpedia-backend/internal/policy"
	"novelpedia-backend/internal/shared/response"
	"novelpedia-backend/pkg/jwt"
)

const actorKey = "actor"

// AccessTokenValidator is satisfied by *jwt.Manager.
type AccessTokenValidator interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// Authenticate resolves the bearer token into a policy.Actor. Requests
// without an Authorization header continue as anonymous; a malformed or
// invalid token is rejected.
func Authenticate(tokens AccessTokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Set(actorKey, policy.Anonymous())
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := tokens.ValidateAccessToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			response.Unauthorized(c, "invalid user ID in token")
			c.Abort()
			return
		}

		c.Set(actorKey, policy.User(userID, policy.Role(claims.Role)))
		c.Next()
	}
}

// RequireAuth aborts with 401 unless Authenticate produced a user.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Actor(c).Authenticated {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Actor returns the identity attached by Authenticate, or anonymous.
func Actor(c *gin.Context) policy.Actor {
	if v, ok := c.Get(actorKey); ok {
		if a, ok := v.(policy.Actor); ok {
			return a
		}
	}
	return policy.Anonymous()
}
