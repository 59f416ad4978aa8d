package middleware

import (
	"net/http"
	"strings"

	"github.com/arenalab/promptarena/internal/auth"
	"github.com/arenalab/promptarena/internal/models"
	"github.com/arenalab/promptarena/pkg/utils"
	"github.com/gin-gonic/gin"
)

// UserContextKey is where RequireUser stores the resolved user.
const UserContextKey = "current_user"

// RequireUser resolves the bearer session token to a user and aborts with
// 401 when missing or invalid.
func RequireUser(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", models.ErrUnauthorized)
			c.Abort()
			return
		}

		// Malformed tokens are rejected before touching the session store.
		if !utils.ValidateSessionToken(token) {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid or expired session", models.ErrUnauthorized)
			c.Abort()
			return
		}

		user := authService.CurrentUser(c.Request.Context(), token)
		if user == nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid or expired session", models.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(UserContextKey, user)
		c.Next()
	}
}

// CurrentUser fetches the user injected by RequireUser.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.GetHeader("X-Session-ID")
}
