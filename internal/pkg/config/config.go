package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	LogFile  string `env:"LOG_FILE"`

	// JWTSecret signs admin tokens; admin routes refuse every request when empty.
	JWTSecret string `env:"JWT_SECRET"`
	// HRSecretCodeHash is the bcrypt hash of the code required to register as hr.
	HRSecretCodeHash string `env:"HR_SECRET_CODE_HASH"`
	ClientURL        string `env:"CLIENT_URL, default=http://localhost:5173"`

	Mongo  MongoConfig
	Redis  RedisConfig
	Stripe StripeConfig
	Jobs   JobsConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=assetverse"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,       default=0"`
	LockTTL  time.Duration `env:"LOCK_TTL,       default=10s"`
	LockWait time.Duration `env:"LOCK_WAIT,      default=3s"`
}

type StripeConfig struct {
	Secret   string `env:"STRIPE_SECRET"`
	Currency string `env:"STRIPE_CURRENCY, default=usd"`
}

type JobsConfig struct {
	AuditWorkers  int    `env:"AUDIT_WORKERS,  default=4"`
	UsageSchedule string `env:"USAGE_SCHEDULE, default=@every 1m"`
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool { return c.Env == "production" }

// Load reads a .env file when one exists, then the process environment.
// Values already set in the environment win over the file.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	return &cfg, nil
}
