package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/todo-backend/internal/http/handlers"
	httpMW "github.com/yungbote/todo-backend/internal/http/middleware"
	"github.com/yungbote/todo-backend/internal/observability"
	"github.com/yungbote/todo-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	Metrics        *observability.Metrics
	CORSOrigins    []string
	RateLimiter    *httpMW.RateLimiter
	AuthMiddleware *httpMW.AuthMiddleware

	TodoHandler   *httpH.TodoHandler
	EmailHandler  *httpH.EmailHandler
	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Recovery(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Middleware())
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}

	todo := api.Group("/todo")
	{
		// Email registry (public per route policy)
		if cfg.EmailHandler != nil {
			todo.POST("/email", cfg.EmailHandler.RegisterEmail)
			todo.GET("/emaillist", cfg.EmailHandler.ListEmails)
		}

		if cfg.TodoHandler != nil {
			todo.GET("", cfg.TodoHandler.Index)
			todo.GET("/list", cfg.TodoHandler.ListTodos)
			todo.GET("/:id", cfg.TodoHandler.GetTodo)
			todo.GET("/:id/activity", cfg.TodoHandler.ListActivity)
			todo.POST("/createtodo", cfg.TodoHandler.CreateTodo)
			todo.PUT("/updatetodo/:id", cfg.TodoHandler.UpdateTodo)
			todo.DELETE("/deletetodo/:id", cfg.TodoHandler.DeleteTodo)
			todo.DELETE("/delete/:id/comment/:commentId", cfg.TodoHandler.DeleteComment)
		}
	}

	return r
}
