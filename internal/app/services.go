package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/todo-backend/internal/cache"
	"github.com/yungbote/todo-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/todo-backend/internal/domain/aggregates"
	"github.com/yungbote/todo-backend/internal/platform/logger"
	"github.com/yungbote/todo-backend/internal/services"
)

const cachePrefix = "todo-backend:"

type Services struct {
	Auth  services.AuthService
	Todo  services.TodoService
	Email services.EmailService

	TodoAggregate domainagg.TodoAggregate
	EmailRegistry domainagg.EmailRegistry
	Cache         cache.Cache
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	verifier, err := newVerifier(cfg, log)
	if err != nil {
		return Services{}, fmt.Errorf("init token verifier: %w", err)
	}

	base := aggregates.BaseDeps{
		DB:     db,
		Log:    log,
		Runner: aggregates.NewGormTxRunner(db),
		Hooks:  aggregates.NewObservabilityHooks(clients.Metrics),
	}
	todoAgg := aggregates.NewTodoAggregate(aggregates.TodoAggregateDeps{
		Base:       base,
		Todos:      repos.Todo,
		Tags:       repos.Tag,
		Comments:   repos.Comment,
		Assignees:  repos.Assignee,
		Emails:     repos.Email,
		Activities: repos.Activity,
	})
	registry := aggregates.NewEmailRegistry(aggregates.EmailRegistryDeps{
		Base:   base,
		Emails: repos.Email,
	})

	var todoCache cache.Cache = cache.Noop{}
	if clients.Redis != nil {
		todoCache = cache.New(clients.Redis, cachePrefix, cfg.CacheTTL, log, clients.Metrics)
	}

	return Services{
		Auth:          services.NewAuthService(log, verifier, clients.Metrics),
		Todo:          services.NewTodoService(log, repos.Todo, repos.Activity, todoAgg, todoCache),
		Email:         services.NewEmailService(log, repos.Email, registry),
		TodoAggregate: todoAgg,
		EmailRegistry: registry,
		Cache:         todoCache,
	}, nil
}

func newVerifier(cfg Config, log *logger.Logger) (services.Verifier, error) {
	switch cfg.AuthMode {
	case AuthModeFirebase:
		return services.NewFirebaseVerifier(services.FirebaseVerifierConfig{
			ProjectID: cfg.FirebaseProjectID,
		}, log)
	case AuthModeJWT:
		return services.NewJWTVerifier(services.JWTVerifierConfig{
			Secret:   cfg.JWTSecretKey,
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
		})
	default:
		return nil, fmt.Errorf("unsupported AUTH_MODE %q", cfg.AuthMode)
	}
}
