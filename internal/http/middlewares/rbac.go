package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sugarrush/sweetshop/internal/domain/user"
)

func (m *AuthMiddleware) RequireRole(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)

		// No identity attached means RequireAuth never ran for this route.
		// That is a wiring bug; fail closed rather than default-allow.
		if !ok || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing identity context",
				},
			})
			return
		}
		if role != required {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "Admin role required",
				},
			})
			return
		}
		c.Next()
	}
}

// RequireAdmin bundles authentication and the admin role check into one
// ordered chain so call sites cannot compose them in the wrong order.
func (m *AuthMiddleware) RequireAdmin() gin.HandlersChain {
	return gin.HandlersChain{m.RequireAuth(), m.RequireRole(user.RoleAdmin)}
}
