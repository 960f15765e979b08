package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/todo-backend/internal/data/db"
	httpMW "github.com/yungbote/todo-backend/internal/http/middleware"
	"github.com/yungbote/todo-backend/internal/platform/envutil"
	"github.com/yungbote/todo-backend/internal/platform/logger"
)

const (
	AuthModeJWT      = "jwt"
	AuthModeFirebase = "firebase"
)

type Config struct {
	Port    string
	LogMode string

	DB db.Config

	AuthMode          string
	JWTSecretKey      string
	JWTIssuer         string
	JWTAudience       string
	FirebaseProjectID string
	RoutePolicyFile   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string

	MetricsAddr     string
	ShutdownTimeout time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port:    envutil.String("PORT", "8080", log),
		LogMode: envutil.String("LOG_MODE", "development", log),

		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", db.DriverPostgres, log),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost", log),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432", log),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres", log),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", "", log),
			PostgresName:     envutil.String("POSTGRES_NAME", "todo", log),
			PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable", log),
			SQLitePath:       envutil.String("SQLITE_PATH", "", log),
			MaxOpenConns:     envutil.Int("POSTGRES_MAX_OPEN_CONNS", 20, log),
			ConnMaxLifetime:  envutil.Seconds("POSTGRES_CONN_MAX_LIFETIME_SECONDS", 30*time.Minute, log),
		},

		AuthMode:          strings.ToLower(envutil.String("AUTH_MODE", AuthModeJWT, log)),
		JWTSecretKey:      envutil.String("JWT_SECRET_KEY", "", log),
		JWTIssuer:         envutil.String("JWT_ISSUER", "", log),
		JWTAudience:       envutil.String("JWT_AUDIENCE", "", log),
		FirebaseProjectID: envutil.String("FIREBASE_PROJECT_ID", "", log),
		RoutePolicyFile:   envutil.String("AUTH_ROUTE_POLICY_FILE", "", log),

		RedisAddr:     envutil.String("REDIS_ADDR", "", log),
		RedisPassword: envutil.String("REDIS_PASSWORD", "", log),
		RedisDB:       envutil.Int("REDIS_DB", 0, log),
		CacheTTL:      envutil.Seconds("CACHE_TTL_SECONDS", 5*time.Minute, log),

		RateLimitRPS:   envutil.Float("RATE_LIMIT_RPS", 0, log),
		RateLimitBurst: envutil.Int("RATE_LIMIT_BURST", 20, log),
		CORSOrigins:    envutil.CSV("CORS_ALLOW_ORIGINS", httpMW.DefaultCORSOrigins, log),

		MetricsAddr:     envutil.String("METRICS_ADDR", ":9090", log),
		ShutdownTimeout: envutil.Seconds("SHUTDOWN_TIMEOUT_SECONDS", 30*time.Second, log),
	}
}

// Validate rejects configurations the process cannot serve with.
func (c Config) Validate() error {
	switch c.AuthMode {
	case AuthModeJWT:
		if strings.TrimSpace(c.JWTSecretKey) == "" {
			return fmt.Errorf("JWT_SECRET_KEY is required when AUTH_MODE=%s", AuthModeJWT)
		}
	case AuthModeFirebase:
		if strings.TrimSpace(c.FirebaseProjectID) == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required when AUTH_MODE=%s", AuthModeFirebase)
		}
	default:
		return fmt.Errorf("unsupported AUTH_MODE %q", c.AuthMode)
	}
	switch strings.ToLower(strings.TrimSpace(c.DB.Driver)) {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1 when rate limiting is on")
	}
	return nil
}

func (c Config) Addr() string {
	port := strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
	if port == "" {
		port = "8080"
	}
	return ":" + port
}
