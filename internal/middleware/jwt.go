package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/survey-app/backend/internal/models"
	"github.com/survey-app/backend/pkg/response"
)

const (
	// ContextUserID is the key for user ID in gin context.
	ContextUserID = "user_id"
	// ContextUserRole is the key for user role in gin context.
	ContextUserRole = "user_role"
	// ContextUsername is the key for username in gin context.
	ContextUsername = "username"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID   int64
	Username string
	Role     models.Role
}

// TokenValidator resolves a bearer token into the caller.
type TokenValidator func(token string) (Principal, error)

// JWT returns a middleware that validates JWT and sets user claims in context.
func JWT(validate TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		p, err := validate(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextUserID, p.UserID)
		c.Set(ContextUserRole, p.Role)
		c.Set(ContextUsername, p.Username)
		c.Next()
	}
}

// UserID returns the authenticated user's id, or 0 outside the JWT middleware.
func UserID(c *gin.Context) int64 {
	id, _ := c.Get(ContextUserID)
	v, _ := id.(int64)
	return v
}

// Role returns the authenticated user's role.
func Role(c *gin.Context) models.Role {
	r, _ := c.Get(ContextUserRole)
	v, _ := r.(models.Role)
	return v
}
