package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/todo-backend/internal/http/response"
	"github.com/yungbote/todo-backend/internal/platform/logger"
	"github.com/yungbote/todo-backend/internal/services"
)

// AuthMiddleware is the only place a bearer token is checked. Handlers
// behind it never re-check identity.
type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
	policy      *RoutePolicy
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService, policy *RoutePolicy) *AuthMiddleware {
	return &AuthMiddleware{
		log:         log.With("middleware", "AuthMiddleware"),
		authService: authService,
		policy:      policy,
	}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if am.policy.IsPublic(c.Request.Method, c.FullPath()) {
			c.Next()
			return
		}
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing bearer token"))
			return
		}
		ctx, err := am.authService.SetContextFromToken(c.Request.Context(), token)
		if err != nil {
			am.log.Debug("rejected token", "path", c.FullPath(), "error", err)
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("invalid bearer token"))
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
