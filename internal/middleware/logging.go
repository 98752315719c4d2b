package middleware

import (
	"time"

	"contenthub/pkg/log"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request. Bodies are not logged since
// they carry passwords and tokens.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		fields := []interface{}{
			"statusCode", c.Writer.Status(),
			"latency", time.Since(startTime).String(),
			"clientIP", c.ClientIP(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"responseSize", c.Writer.Size(),
		}
		if user, ok := CurrentUser(c); ok {
			fields = append(fields, "userId", user.ID)
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}
		log.Infow("HTTP request", fields...)
	}
}
