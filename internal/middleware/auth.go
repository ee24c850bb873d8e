package middleware

import (
	"net/http"
	"strings"

	"github.com/MuhammedFaaik/f66/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the bearer token and puts uid/username on the
// context for downstream handlers.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		uid, username, err := service.ParseToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("uid", uid)
		c.Set("username", username)
		c.Next()
	}
}
