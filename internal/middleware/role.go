package middleware

import "github.com/gin-gonic/gin"

// RequireRole allows the request through only when the authenticated
// user's account type is in the allowed set. Runs after AuthMiddleware.
func RequireRole(allowedTypes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userType, exists := c.Get("userType")
		if !exists {
			c.AbortWithStatusJSON(403, gin.H{"error": "account type missing"})
			return
		}

		for _, allowed := range allowedTypes {
			if userType == allowed {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(403, gin.H{"error": "forbidden"})
	}
}
