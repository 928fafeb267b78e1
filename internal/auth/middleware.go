package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Alpha4Coders/DevTrack/internal/config"
)

// Middleware resolves the bearer token to an identity and stashes it on the
// gin context under "identity" / "userId".
func Middleware(provider Provider, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			var id *Identity
			var err error
			if cfg.Env == "development" {
				id, err = provider.ValidateTokenLocal(token)
			} else {
				id, err = provider.ValidateTokenRemote(c.Request.Context(), token)
			}
			if err == nil {
				c.Set("identity", id)
				c.Set("userId", id.ID)
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
}
