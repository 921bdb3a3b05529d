// internal/middleware/admin_middleware.go
package middleware

import (
	"crypto/subtle"
	"strings"

	"vitrina-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// AdminAuth gates the admin surface behind a static bearer token. Full
// account/session handling belongs to the main site; this service only
// needs to keep the catalog CRUD off the public internet.
func AdminAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			response.Unauthorized(c, "admin surface is disabled")
			return
		}

		header := c.GetHeader("Authorization")
		provided, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			response.Unauthorized(c, "missing bearer token")
			return
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			response.Unauthorized(c, "invalid admin token")
			return
		}

		c.Next()
	}
}
