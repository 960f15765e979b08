package app

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/todo-backend/internal/data/db"
	httpMW "github.com/yungbote/todo-backend/internal/http/middleware"
	"github.com/yungbote/todo-backend/internal/platform/logger"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, name := range []string{"PORT", "DB_DRIVER", "AUTH_MODE", "CACHE_TTL_SECONDS", "CORS_ALLOW_ORIGINS", "RATE_LIMIT_RPS", "SHUTDOWN_TIMEOUT_SECONDS"} {
		t.Setenv(name, "")
	}
	cfg := LoadConfig(logger.Nop())

	if cfg.Addr() != ":8080" {
		t.Fatalf("addr: got=%q", cfg.Addr())
	}
	if cfg.DB.Driver != db.DriverPostgres {
		t.Fatalf("driver: got=%q", cfg.DB.Driver)
	}
	if cfg.AuthMode != AuthModeJWT {
		t.Fatalf("auth mode: got=%q", cfg.AuthMode)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Fatalf("cache ttl: got=%s", cfg.CacheTTL)
	}
	if cfg.RateLimitRPS != 0 {
		t.Fatalf("rate limiting should be off by default, rps=%v", cfg.RateLimitRPS)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Fatalf("shutdown timeout: got=%s", cfg.ShutdownTimeout)
	}
	if !reflect.DeepEqual(cfg.CORSOrigins, httpMW.DefaultCORSOrigins) {
		t.Fatalf("cors origins: got=%v", cfg.CORSOrigins)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", ":9000")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/todo.db")
	t.Setenv("AUTH_MODE", "Firebase")
	t.Setenv("FIREBASE_PROJECT_ID", "todo-prod")
	t.Setenv("CACHE_TTL_SECONDS", "60")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, ,https://b.example")

	cfg := LoadConfig(logger.Nop())
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Addr() != ":9000" {
		t.Fatalf("addr: got=%q", cfg.Addr())
	}
	if cfg.DB.Driver != "sqlite" || cfg.DB.SQLitePath != "/tmp/todo.db" {
		t.Fatalf("db: got=%+v", cfg.DB)
	}
	if cfg.AuthMode != AuthModeFirebase || cfg.FirebaseProjectID != "todo-prod" {
		t.Fatalf("auth: mode=%q project=%q", cfg.AuthMode, cfg.FirebaseProjectID)
	}
	if cfg.CacheTTL != time.Minute {
		t.Fatalf("cache ttl: got=%s", cfg.CacheTTL)
	}
	if cfg.RateLimitRPS != 2.5 || cfg.RateLimitBurst != 5 {
		t.Fatalf("rate limit: rps=%v burst=%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.CORSOrigins, want) {
		t.Fatalf("cors origins: got=%v want=%v", cfg.CORSOrigins, want)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := Config{
		AuthMode:     AuthModeJWT,
		JWTSecretKey: "secret",
		DB:           db.Config{Driver: db.DriverSQLite},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"jwt without secret", func(c *Config) { c.JWTSecretKey = "" }, "JWT_SECRET_KEY"},
		{"firebase without project", func(c *Config) { c.AuthMode = AuthModeFirebase }, "FIREBASE_PROJECT_ID"},
		{"unknown auth mode", func(c *Config) { c.AuthMode = "basic" }, "AUTH_MODE"},
		{"unknown driver", func(c *Config) { c.DB.Driver = "mysql" }, "DB_DRIVER"},
		{"rate limit without burst", func(c *Config) { c.RateLimitRPS = 1; c.RateLimitBurst = 0 }, "RATE_LIMIT_BURST"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Validate: got=%v want mention of %s", err, tc.want)
			}
		})
	}
}
