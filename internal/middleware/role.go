package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/survey-app/backend/internal/models"
	"github.com/survey-app/backend/pkg/response"
)

// RequireRole returns a middleware that allows only the given roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		role, ok := c.Get(ContextUserRole)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		r, _ := role.(models.Role)
		if _, ok := allowed[r]; !ok {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSelfOrAdmin allows the request when the path parameter names the caller, or the caller is an admin.
func RequireSelfOrAdmin(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param(param), 10, 64)
		if err != nil {
			response.BadRequest(c, "invalid "+param)
			c.Abort()
			return
		}
		if id != UserID(c) && !Role(c).IsAdmin() {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
