package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pairpad/pairpad/internal/auth"
)

const identityCtxKey = "identity"

// RequireAuth enforces a bearer token and stores the verified identity
// on the gin context.
func RequireAuth(jwt *auth.JWT) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		identity, err := jwt.Verify(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(identityCtxKey, identity)
		c.Next()
	}
}
