package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"podgate/api/internal/config"
	"podgate/api/internal/security"
	"podgate/api/internal/session"
)

const (
	ContextSession = "session"
	ContextClaims  = "session_claims"
)

// Auth parses the podgate session token and loads the backing session from
// redis. The upstream podcore token rides along inside the session and is
// attached to outbound calls by the handlers.
func Auth(cfg *config.AppConfig, sessions *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := security.ParseSessionToken(tokenStr, cfg.Auth.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		sess, err := sessions.Get(c.Request.Context(), claims.SessionID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session_not_found"})
			return
		}

		if sess.User.ID != claims.UserID {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session_mismatch"})
			return
		}

		_ = sessions.Touch(c.Request.Context(), sess.ID)

		c.Set(ContextSession, sess)
		c.Set(ContextClaims, *claims)

		c.Next()
	}
}
