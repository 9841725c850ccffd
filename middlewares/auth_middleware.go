package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/startup-platform/models"
	"github.com/yeremiapane/startup-platform/services"
	"github.com/yeremiapane/startup-platform/utils"
)

// Context keys set by the auth middlewares.
const (
	ContextUserID = "userID"
	ContextRole   = "role"
	ContextEmail  = "email"
)

// AuthMiddleware requires a valid Bearer access token.
func AuthMiddleware(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Authorization header missing"))
			c.Abort()
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid authorization format"))
			c.Abort()
			return
		}

		claims, err := tokens.ParseAccessToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil || claims.UserID() == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid or expired token"))
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

func setClaims(c *gin.Context, claims *utils.CustomClaims) {
	c.Set(ContextUserID, claims.UserID())
	c.Set(ContextRole, models.UserRole(claims.Role))
	c.Set(ContextEmail, claims.Email)
}

// CurrentUserID returns the authenticated user id, or "" outside auth.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

func CurrentRole(c *gin.Context) models.UserRole {
	role, _ := c.Get(ContextRole)
	r, _ := role.(models.UserRole)
	return r
}

// CurrentActor bundles the caller identity for service calls.
func CurrentActor(c *gin.Context) services.Actor {
	return services.Actor{UserID: CurrentUserID(c), Role: CurrentRole(c)}
}
