package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hotel-ops/utils"
)

// WebSocketAuthMiddleware reads the token from the query string since
// browser websocket clients cannot set an Authorization header.
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(401)
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			c.AbortWithStatus(401)
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("userName", claims.Name)
		c.Set("userDept", claims.Dept)
		c.Set("role", claims.Role)

		c.Next()
	}
}
