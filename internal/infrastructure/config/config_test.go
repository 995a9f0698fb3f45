package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	var cfg Config
	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   &cfg,
		Lookuper: envconfig.MapLookuper(map[string]string{}),
	}); err != nil {
		t.Fatalf("process returned error: %v", err)
	}
	if cfg.Presence.HeartbeatInterval != 30*time.Second || cfg.Presence.OnlineWindow != 5*time.Minute {
		t.Fatalf("unexpected presence defaults: %+v", cfg.Presence)
	}
	if cfg.Audit.Capacity != 500 || cfg.Audit.FailedLogins {
		t.Fatalf("unexpected audit defaults: %+v", cfg.Audit)
	}
	if cfg.Policy.DefaultCredential != "deppen2026" || cfg.Policy.MinPasswordLength != 6 {
		t.Fatalf("unexpected policy defaults: %+v", cfg.Policy)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("development defaults should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{Env: "production", StoreDriver: DriverRedis}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing JWT secret to fail in production")
	}
	cfg.JWTSecret = "s"
	cfg.StoreDriver = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown driver to fail")
	}
}

func TestLoad_BackendSettings(t *testing.T) {
	var cfg Config
	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target: &cfg,
		Lookuper: envconfig.MapLookuper(map[string]string{
			"STORE_DRIVER":        "redis",
			"REDIS_POOL_SIZE":     "32",
			"REDIS_READ_TIMEOUT":  "750ms",
			"MONGO_MAX_POOL_SIZE": "50",
		}),
	}); err != nil {
		t.Fatalf("process returned error: %v", err)
	}
	if cfg.Redis.PoolSize != 32 || cfg.Redis.ReadTimeout != 750*time.Millisecond || cfg.Redis.DialTimeout != 5*time.Second {
		t.Fatalf("unexpected redis settings: %+v", cfg.Redis)
	}
	if cfg.Mongo.MaxPoolSize != 50 || cfg.Mongo.ConnectTimeout != 10*time.Second {
		t.Fatalf("unexpected mongo settings: %+v", cfg.Mongo)
	}
}
