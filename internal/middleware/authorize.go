package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"podgate/api/internal/models"
)

// RequireRoles gates a route group to specific podcore roles. A logged-in
// user of the wrong role gets a bare 403: the front end redirects them to
// their own dashboard without rendering anything.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		sessVal, exists := c.Get(ContextSession)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		sess, ok := sessVal.(models.Session)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_session"})
			return
		}

		if _, ok := roleSet[sess.User.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Next()
	}
}
