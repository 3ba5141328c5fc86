package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/Sadab-Ansari/Contract-SPA-Dashboard/pkg/logger"
	"github.com/gin-gonic/gin"
)

// Recovery turns a panic in a handler into a 500 JSON response
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				attrs := []any{
					"error", err,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
				}
				if m := GetSession(c); m != nil {
					attrs = append(attrs, "session_state", m.State().String(), "login_pending", m.Pending())
				}
				attrs = append(attrs, "stack", string(debug.Stack()))
				logger.Error(c.Request.Context(), "panic recovered", attrs...)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":      "Internal server error",
					"request_id": GetRequestID(c),
					"client_id":  GetClientID(c),
				})
			}
		}()

		c.Next()
	}
}
