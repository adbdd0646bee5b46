package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/comunavision/backend/internal/models"
	"github.com/comunavision/backend/internal/services"
)

// Context keys set by AuthMiddleware.
const (
	UserIDKey      = "userID"
	RoleKey        = "role"
	CurrentUserKey = "currentUser"
)

// AuthMiddleware validates the bearer token, loads the account and aborts on
// inactive or unknown users. On success the user id, role and the loaded
// *models.User are placed in the gin context.
func AuthMiddleware(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Bearer token required"})
			return
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No autorizado"})
			return
		}

		user, err := authService.GetUserByID(claims.UserID)
		if err != nil || !user.Active {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No autorizado"})
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Set(RoleKey, string(user.Role))
		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

// RequireRole aborts with 403 unless the authenticated user holds the role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, exists := c.Get(RoleKey)
		if !exists || current.(string) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "No tienes permisos para esta acción"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user loaded by AuthMiddleware.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CurrentUserKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}
