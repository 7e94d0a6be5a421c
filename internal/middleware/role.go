package middleware

import (
	"github.com/bni27/ogp-db-api/internal/auth"

	"github.com/gin-gonic/gin"
)

// RequireRole enforces a minimum privilege level. ADMIN passes every
// check, EDITOR passes EDITOR and VIEWER checks, VIEWER only VIEWER.
func RequireRole(minRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("userRole")
		if !exists {
			c.AbortWithStatusJSON(403, gin.H{"error": "role missing"})
			return
		}

		roleStr, ok := role.(string)
		if !ok || !auth.HasPrivilege(roleStr, minRole) {
			c.AbortWithStatusJSON(403, gin.H{"error": "You lack sufficient privileges for this action."})
			return
		}

		c.Next()
	}
}
