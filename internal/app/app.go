package app

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apphttp "github.com/yungbote/todo-backend/internal/http"
	"github.com/yungbote/todo-backend/internal/observability"
	"github.com/yungbote/todo-backend/internal/platform/envutil"
	"github.com/yungbote/todo-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *apphttp.Server
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Services Services

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New() (*App, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development", nil))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)
	if err := cfg.Validate(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("config: %w", err)
	}

	otelCfg := observability.LoadOtelConfig(log)
	otelShutdown := observability.InitOTel(context.Background(), log, otelCfg)

	clients, err := wireClients(cfg, log)
	if err != nil {
		_ = otelShutdown(context.Background())
		log.Sync()
		return nil, err
	}
	theDB := clients.DB.DB()

	reposet := wireRepos(theDB, log)

	serviceset, err := wireServices(theDB, log, cfg, reposet, clients)
	if err != nil {
		clients.Close()
		_ = otelShutdown(context.Background())
		log.Sync()
		return nil, err
	}

	handlerset, err := wireHandlers(log, serviceset, clients)
	if err != nil {
		clients.Close()
		_ = otelShutdown(context.Background())
		log.Sync()
		return nil, err
	}
	middleware, err := wireMiddleware(log, cfg, serviceset)
	if err != nil {
		clients.Close()
		_ = otelShutdown(context.Background())
		log.Sync()
		return nil, err
	}

	routerCfg := apphttp.RouterConfig{
		Log:            log,
		Metrics:        clients.Metrics,
		CORSOrigins:    cfg.CORSOrigins,
		RateLimiter:    middleware.RateLimiter,
		AuthMiddleware: middleware.Auth,
		TodoHandler:    handlerset.Todo,
		EmailHandler:   handlerset.Email,
		HealthHandler:  handlerset.Health,
	}
	if otelCfg.Enabled {
		routerCfg.ServiceName = otelCfg.ServiceName
	}

	return &App{
		Log:          log,
		DB:           theDB,
		Server:       apphttp.NewServer(cfg.Addr(), routerCfg),
		Cfg:          cfg,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches the background collectors. It is a no-op when called twice.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	m := a.Clients.Metrics
	if m == nil {
		return
	}
	m.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
	m.StartPostgresCollector(ctx, a.Log, a.DB)
	if a.Clients.Redis != nil {
		m.StartRedisCollector(ctx, a.Log, a.Clients.Redis)
	}
	if sloCfg, enabled := observability.LoadSLOConfig(a.Log); enabled {
		m.StartSLOEvaluator(ctx, a.Log, sloCfg)
	}
}

// Run serves HTTP until Shutdown.
func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("http server listening", "addr", a.Cfg.Addr(), "auth_mode", a.Cfg.AuthMode, "db_driver", a.Cfg.DB.Driver)
	return a.Server.Run()
}

// Shutdown drains in-flight requests, then releases every client.
func (a *App) Shutdown(ctx context.Context) error {
	if a == nil {
		return nil
	}
	var errs []error
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server: %w", err))
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("otel: %w", err))
		}
	}
	a.Close()
	return errors.Join(errs...)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.Log != nil {
		a.Log.Sync()
	}
}
