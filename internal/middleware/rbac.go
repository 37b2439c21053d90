package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/trainwell/pathway-api/internal/models"
	appErrors "github.com/trainwell/pathway-api/pkg/errors"
	"github.com/trainwell/pathway-api/pkg/response"
)

// SelfAccess in an RBAC allow list lets a user through when the :id path
// parameter is their own user id, regardless of role.
const SelfAccess = "SELF"

// RBAC gates a route on the caller's role. Must run after JWT.
func RBAC(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		for _, entry := range allowed {
			if entry == SelfAccess {
				if targetID := c.Param("id"); targetID != "" && targetID == claims.UserID {
					c.Next()
					return
				}
				continue
			}
			if models.UserRole(entry) == claims.Role {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// RequireRoles is a typed-role convenience over RBAC.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make([]string, len(roles))
	for i, r := range roles {
		allowed[i] = string(r)
	}
	return RBAC(allowed...)
}
