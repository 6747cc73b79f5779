package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sakura-events/sakura-backend/internal/auth"
)

// RequireIdentity resolves the caller and rejects the request with 401 before
// any handler runs when no identity is found.
func RequireIdentity(resolver auth.IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := resolver.Resolve(c.Request)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": auth.ErrUnauthenticated.Error()})
			return
		}

		auth.SetIdentity(c, id)
		c.Next()
	}
}
