package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	Auth       AuthConfig
	Postgres   PostgresConfig
	Mongo      MongoConfig
	Redis      RedisConfig
	Dispatcher DispatcherConfig
	Jobs       JobsConfig
}

type AuthConfig struct {
	JWTSecret        string        `env:"JWT_SECRET, required"`
	TokenTTL         time.Duration `env:"AUTH_TOKEN_TTL, default=60m"`
	BcryptCost       int           `env:"AUTH_BCRYPT_COST, default=10"`
	AllowAdminSignup bool          `env:"AUTH_ALLOW_ADMIN_SIGNUP, default=false"`
}

type PostgresConfig struct {
	URL          string `env:"DATABASE_URL, required"`
	AutoMigrate  bool   `env:"DB_AUTO_MIGRATE, default=true"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS, default=15"`
	MaxIdleConns int    `env:"DB_MAX_IDLE_CONNS, default=5"`
}

type MongoConfig struct {
	URI         string `env:"MONGO_URI,           default=mongodb://localhost:27017"`
	Database    string `env:"MONGO_DB,            default=swiftlogistics"`
	MaxPoolSize uint64 `env:"MONGO_MAX_POOL_SIZE, default=20"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,      default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,        default=0"`
	PoolSize int    `env:"REDIS_POOL_SIZE, default=10"`
}

type DispatcherConfig struct {
	Workers int `env:"DISPATCHER_WORKERS, default=8"`
}

type JobsConfig struct {
	StatsSchedule string `env:"STATS_REFRESH_SCHEDULE, default=@every 30s"`
}

// IsDevelopment reports whether the service runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case len(c.Auth.JWTSecret) < 16:
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	case c.Auth.TokenTTL <= 0:
		return fmt.Errorf("AUTH_TOKEN_TTL must be positive")
	case c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31:
		return fmt.Errorf("AUTH_BCRYPT_COST must be between 4 and 31")
	case c.Dispatcher.Workers < 1:
		return fmt.Errorf("DISPATCHER_WORKERS must be at least 1")
	case c.ShutdownTimeout <= 0:
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}
