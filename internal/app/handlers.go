package app

import (
	"fmt"

	httpH "github.com/yungbote/todo-backend/internal/http/handlers"
	httpMW "github.com/yungbote/todo-backend/internal/http/middleware"
	"github.com/yungbote/todo-backend/internal/platform/logger"
)

type Handlers struct {
	Health *httpH.HealthHandler
	Todo   *httpH.TodoHandler
	Email  *httpH.EmailHandler
}

type Middleware struct {
	Auth        *httpMW.AuthMiddleware
	RateLimiter *httpMW.RateLimiter
}

func wireHandlers(log *logger.Logger, services Services, clients Clients) (Handlers, error) {
	log.Info("Wiring handlers...")

	deps := map[string]httpH.Pinger{}
	if clients.DB != nil {
		sqlDB, err := clients.DB.DB().DB()
		if err != nil {
			return Handlers{}, fmt.Errorf("health: sql.DB: %w", err)
		}
		deps["database"] = sqlDB
	}
	if clients.Redis != nil {
		deps["redis"] = redisPinger{client: clients.Redis}
	}

	return Handlers{
		Health: httpH.NewHealthHandler(deps),
		Todo:   httpH.NewTodoHandler(log, services.Todo),
		Email:  httpH.NewEmailHandler(log, services.Email),
	}, nil
}

func wireMiddleware(log *logger.Logger, cfg Config, services Services) (Middleware, error) {
	log.Info("Wiring middleware...")

	policy, err := httpMW.LoadRoutePolicy(cfg.RoutePolicyFile)
	if err != nil {
		return Middleware{}, fmt.Errorf("load route policy: %w", err)
	}

	var limiter *httpMW.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = httpMW.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	return Middleware{
		Auth:        httpMW.NewAuthMiddleware(log, services.Auth, policy),
		RateLimiter: limiter,
	}, nil
}
