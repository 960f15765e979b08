package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/todo-backend/internal/http/response"
	"github.com/yungbote/todo-backend/internal/platform/logger"
)

// Recovery turns a panic into the standard 500 envelope. The panic value and
// stack are logged only.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	if log != nil {
		log = log.With("middleware", "Recovery")
	}
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}
			if log != nil {
				log.Error("panic recovered",
					"panic", rec,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)
			}
			if c.Writer.Written() {
				c.Abort()
				return
			}
			response.RespondError(c, http.StatusInternalServerError, "internal", errors.New("internal server error"))
		}()
		c.Next()
	}
}
