package middlewares

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/startup-platform/models"
	"github.com/yeremiapane/startup-platform/utils"
)

// RequireRole lets the request through when the caller has one of roles.
// ADMIN always passes. Must run after AuthMiddleware.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, strings.ToLower(string(r)))
	}
	denied := fmt.Errorf("%s access required", strings.Join(names, " or "))

	return func(c *gin.Context) {
		if CurrentUserID(c) == "" {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}

		role := CurrentRole(c)
		if role == models.RoleAdmin {
			c.Next()
			return
		}
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		utils.RespondError(c, http.StatusForbidden, denied)
		c.Abort()
	}
}
