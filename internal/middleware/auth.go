package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"arogya-app-server/internal/config"
	"arogya-app-server/internal/models"
	"arogya-app-server/internal/session"
	"arogya-app-server/internal/utils"
)

const (
	contextArogyaID = "arogyaID"
	contextUser     = "user"
)

// SessionMiddleware admits requests carrying a valid session token for the
// profile currently mounted on the dashboard.
func SessionMiddleware(cfg *config.Config, router *session.Router) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1], cfg.SessionSecret)
		if err != nil {
			utils.Unauthorized(c, "Invalid token: "+err.Error())
			c.Abort()
			return
		}

		user, ok := router.User()
		if !ok || user.ArogyaID != claims.ArogyaID {
			utils.Unauthorized(c, "Session is not active on the dashboard")
			c.Abort()
			return
		}

		c.Set(contextArogyaID, claims.ArogyaID)
		c.Set(contextUser, user)

		c.Next()
	}
}

// GetUserFromContext returns the signed-in profile set by SessionMiddleware
func GetUserFromContext(c *gin.Context) (models.UserProfile, bool) {
	value, exists := c.Get(contextUser)
	if !exists {
		return models.UserProfile{}, false
	}
	user, ok := value.(models.UserProfile)
	return user, ok
}

// GetArogyaIDFromContext returns the Arogya ID from the session token
func GetArogyaIDFromContext(c *gin.Context) (string, bool) {
	value, exists := c.Get(contextArogyaID)
	if !exists {
		return "", false
	}
	id, ok := value.(string)
	return id, ok
}
