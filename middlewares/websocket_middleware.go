package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/startup-platform/utils"
)

// WebSocketAuthMiddleware authenticates the upgrade request. Browsers cannot
// set headers on a WebSocket handshake, so the token comes from ?token=.
func WebSocketAuthMiddleware(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		claims, err := tokens.ParseAccessToken(token)
		if err != nil || claims.UserID() == "" {
			utils.InfoLogger.WithField("client_ip", c.ClientIP()).Warn("Rejected websocket connection with invalid token")
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}
