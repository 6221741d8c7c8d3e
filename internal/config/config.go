// internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const DefaultJWTSecret = "dev-only-secret-change-me"

type Config struct {
	Environment   string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	Server        ServerConfig
	Database      DatabaseConfig
	JWT           JWTConfig
	Security      SecurityConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
	AWS           AWSConfig
	Storage       StorageConfig
	RateLimit     RateLimitConfig
	Shipping      ShippingConfig
	I18n          I18nConfig
	Frontend      FrontendConfig
}

type FrontendConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

type ServerConfig struct {
	Port            string        `env:"SERVER_PORT" envDefault:"8080"`
	Host            string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver       string        `env:"DB_DRIVER" envDefault:"postgres"`
	URL          string        `env:"DATABASE_URL"`
	Host         string        `env:"DB_HOST" envDefault:"localhost"`
	Port         string        `env:"DB_PORT" envDefault:"5432"`
	User         string        `env:"DB_USER" envDefault:"postgres"`
	Password     string        `env:"DB_PASSWORD"`
	Database     string        `env:"DB_NAME" envDefault:"fashion_store"`
	SSLMode      string        `env:"DB_SSL_MODE" envDefault:"disable"`
	MaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"25"`
	MaxLifetime  time.Duration `env:"DB_MAX_LIFETIME" envDefault:"5m"`
	LogLevel     string        `env:"DB_LOG_LEVEL" envDefault:"silent"`
}

type JWTConfig struct {
	SecretKey string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"JWT_TTL" envDefault:"720h"`
	Issuer    string        `env:"JWT_ISSUER" envDefault:"fashion-storefront"`
}

type SecurityConfig struct {
	BcryptCost   int  `env:"BCRYPT_COST" envDefault:"10"`
	CookieSecure bool `env:"COOKIE_SECURE" envDefault:"false"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	Topic   string   `env:"KAFKA_ORDER_TOPIC" envDefault:"storefront.orders"`
}

type ObservabilityConfig struct {
	ServiceName    string `env:"SERVICE_NAME" envDefault:"fashion-storefront"`
	JaegerEndpoint string `env:"JAEGER_ENDPOINT"`
	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
}

type AWSConfig struct {
	Region          string `env:"AWS_REGION" envDefault:"us-east-1"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	S3Bucket        string `env:"AWS_S3_BUCKET" envDefault:"fashion-storefront-assets"`
	CloudFrontURL   string `env:"AWS_CLOUDFRONT_URL"`
}

type StorageConfig struct {
	UploadDir     string `env:"UPLOAD_DIR" envDefault:"./uploads"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	MaxUploadSize int64  `env:"MAX_UPLOAD_SIZE" envDefault:"5242880"`
}

type RateLimitConfig struct {
	Enabled      bool    `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	GeneralRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"10"`
	GeneralBurst int     `env:"RATE_LIMIT_BURST" envDefault:"20"`
	AuthPerMin   int     `env:"RATE_LIMIT_AUTH_PER_MIN" envDefault:"10"`
	AuthBurst    int     `env:"RATE_LIMIT_AUTH_BURST" envDefault:"5"`
}

type ShippingConfig struct {
	FlatRate      string `env:"SHIPPING_FLAT_RATE" envDefault:"10"`
	FreeThreshold string `env:"SHIPPING_FREE_THRESHOLD" envDefault:"50"`
}

type I18nConfig struct {
	DefaultLocale string `env:"DEFAULT_LOCALE" envDefault:"en"`
}

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return config, config.Validate()
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) Validate() error {
	if c.IsProduction() && (c.JWT.SecretKey == "" || c.JWT.SecretKey == DefaultJWTSecret) {
		return fmt.Errorf("JWT secret key must be set in production")
	}

	if c.Security.BcryptCost < 10 {
		return fmt.Errorf("bcrypt cost must be at least 10, got %d", c.Security.BcryptCost)
	}

	if c.JWT.TokenTTL <= 0 {
		return fmt.Errorf("JWT token TTL must be positive")
	}

	if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.Database.Password == "" && c.Database.URL == "" && c.Database.Driver == "postgres" && c.IsProduction() {
		return fmt.Errorf("database password is required in production")
	}

	return nil
}
