package middleware

import (
	"net/http"
	"strings"

	"droply/utils"

	"github.com/gin-gonic/gin"
)

// CallerIDKey is the gin context key the authenticated caller id is stored
// under. Handlers read it to know who the shipper or courier is.
const CallerIDKey = "callerID"

// JWTAuthMiddleware validates the bearer token and stores the caller id in
// the context. Tokens are issued by the external identity service with the
// shared secret; the core only validates them.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
			})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		callerID, err := utils.ExtractIDFromToken(tokenString)
		if err != nil || callerID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
			})
			return
		}

		c.Set(CallerIDKey, callerID)
		c.Next()
	}
}

// CallerID returns the authenticated caller id set by JWTAuthMiddleware.
func CallerID(c *gin.Context) string {
	return c.GetString(CallerIDKey)
}
