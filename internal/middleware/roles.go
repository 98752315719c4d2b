package middleware

import (
	"net/http"

	"contenthub/internal/model"

	"github.com/gin-gonic/gin"
)

// RequireRoles rejects accounts whose role is not listed. It must run after
// AuthMiddleware.
func RequireRoles(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			abort(c, http.StatusInternalServerError, "user information is missing")
			return
		}
		for _, r := range roles {
			if user.Role == r {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, "insufficient permissions")
	}
}
