package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	pkgconfig "github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/config"
)

// Ledger store backends.
const (
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

const insecureJWTSecret = "change-me"

// Config holds all configuration for the storefront cart service.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"storefront-cart"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort        int           `env:"CART_HTTP_PORT" envDefault:"8003"`
	ShutdownTimeout time.Duration `env:"CART_SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// Ledger storage
	Store      string `env:"CART_STORE" envDefault:"redis"`
	CartTTL    int    `env:"CART_TTL_HOURS" envDefault:"168"`
	SQLitePath string `env:"CART_SQLITE_PATH" envDefault:"storefront-cart.db"`

	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Pricing
	CouponEstimatePercent float64 `env:"CART_COUPON_ESTIMATE_PERCENT" envDefault:"10"`

	// Commerce API
	CommerceAPIURL     string        `env:"COMMERCE_API_URL" envDefault:"http://localhost:8080"`
	CommerceTimeout    time.Duration `env:"COMMERCE_API_TIMEOUT" envDefault:"10s"`
	CommerceMaxRetries int           `env:"COMMERCE_API_MAX_RETRIES" envDefault:"2"`

	// Sessions
	JWTSecret            string        `env:"JWT_SECRET" envDefault:"change-me"`
	ReconcileItemTimeout time.Duration `env:"RECONCILE_ITEM_TIMEOUT" envDefault:"5s"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load cart config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CartTTLDuration returns the ledger retention as a duration.
func (c *Config) CartTTLDuration() time.Duration {
	return time.Duration(c.CartTTL) * time.Hour
}

// CouponEstimateRate returns the coupon estimate as a fraction of the subtotal.
func (c *Config) CouponEstimateRate() decimal.Decimal {
	return decimal.NewFromFloat(c.CouponEstimatePercent).Div(decimal.NewFromInt(100))
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	switch c.Store {
	case StoreRedis, StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("CART_STORE must be one of redis, sqlite, memory; got %q", c.Store)
	}
	if c.CartTTL < 0 {
		return fmt.Errorf("CART_TTL_HOURS must not be negative")
	}
	if c.CouponEstimatePercent < 0 || c.CouponEstimatePercent > 100 {
		return fmt.Errorf("CART_COUPON_ESTIMATE_PERCENT must be between 0 and 100")
	}
	if c.CommerceAPIURL == "" {
		return fmt.Errorf("COMMERCE_API_URL is required")
	}
	if c.ReconcileItemTimeout <= 0 {
		return fmt.Errorf("RECONCILE_ITEM_TIMEOUT must be positive")
	}
	if c.JWTSecret == "" || (c.Environment == "production" && c.JWTSecret == insecureJWTSecret) {
		return fmt.Errorf("JWT_SECRET must be set in %s", c.Environment)
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0")
	}
	return nil
}
