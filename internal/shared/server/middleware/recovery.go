package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"resume-coach/internal/shared/apperr"
	"resume-coach/internal/shared/server/respond"
	"resume-coach/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 envelope. A panic with http.ErrAbortHandler is
// re-raised so net/http can drop the connection.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}
			telemetry.Error("panic", map[string]any{
				"request_id": RequestIDFromContext(c),
				"user_id":    UserIDFromContext(c),
				"error":      fmt.Sprint(rec),
				"stack":      string(debug.Stack()),
				"path":       c.Request.URL.Path,
				"method":     c.Request.Method,
			})
			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Fail(c, apperr.Wrap(apperr.KindInternal, "Unexpected server error", fmt.Errorf("panic: %v", rec)))
		}()
		c.Next()
	}
}
