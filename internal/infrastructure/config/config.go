package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverMongo  = "mongo"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWTSecret  string        `env:"JWT_SECRET"`
	SessionTTL time.Duration `env:"SESSION_TTL, default=12h"`

	Policy    PolicyConfig
	Presence  PresenceConfig
	Audit     AuditConfig
	Login     LoginConfig
	Bootstrap BootstrapConfig

	StoreDriver string `env:"STORE_DRIVER, default=memory"`
	Mongo       MongoConfig
	Redis       RedisConfig
	SQLite      SQLiteConfig
}

type PolicyConfig struct {
	InstitutionalDomain string `env:"INSTITUTIONAL_DOMAIN, default=policiapenal.pr.gov.br"`
	DefaultCredential   string `env:"DEFAULT_CREDENTIAL,   default=deppen2026"`
	MinPasswordLength   int    `env:"MIN_PASSWORD_LENGTH,  default=6"`
	BcryptCost          int    `env:"BCRYPT_COST,          default=10"`
}

type PresenceConfig struct {
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL, default=30s"`
	OnlineWindow      time.Duration `env:"ONLINE_WINDOW,      default=5m"`
}

type AuditConfig struct {
	Capacity     int  `env:"AUDIT_CAPACITY,      default=500"`
	FailedLogins bool `env:"AUDIT_FAILED_LOGINS, default=false"`
}

// LoginConfig throttles the unauthenticated /auth endpoints per client IP.
type LoginConfig struct {
	RatePerSecond float64 `env:"LOGIN_RATE,  default=1"`
	Burst         int     `env:"LOGIN_BURST, default=5"`
}

// BootstrapConfig creates the first master at startup when Email is set and
// no account exists yet.
type BootstrapConfig struct {
	Email    string `env:"BOOTSTRAP_MASTER_EMAIL"`
	FullName string `env:"BOOTSTRAP_MASTER_NAME, default=Master Administrator"`
}

type MongoConfig struct {
	URI            string        `env:"MONGO_URI,             default=mongodb://localhost:27017"`
	Database       string        `env:"MONGO_DB,              default=custody_registry"`
	MaxPoolSize    uint64        `env:"MONGO_MAX_POOL_SIZE,   default=0"`
	ConnectTimeout time.Duration `env:"MONGO_CONNECT_TIMEOUT, default=10s"`
}

type RedisConfig struct {
	Addr         string        `env:"REDIS_ADDR,          default=localhost:6379"`
	Password     string        `env:"REDIS_PASSWORD"`
	DB           int           `env:"REDIS_DB,            default=0"`
	PoolSize     int           `env:"REDIS_POOL_SIZE,     default=0"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT,  default=5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT,  default=3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT, default=3s"`
}

type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH, default=data/custody.db"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects combinations the service cannot start with.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory, DriverMongo, DriverRedis, DriverSQLite:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.JWTSecret == "" && !c.IsDevelopment() {
		return fmt.Errorf("config: JWT_SECRET is required outside development")
	}
	return nil
}

// IsDevelopment reports whether ENV names a development environment.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}
