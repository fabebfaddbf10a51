package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/bldrfitness/bldr/internal/types"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `mapstructure:"deployment" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth" validate:"required"`
	Logging    LoggingConfig    `mapstructure:"logging" validate:"required"`
	Postgres   PostgresConfig   `mapstructure:"postgres" validate:"required"`
	Stripe     StripeConfig     `mapstructure:"stripe" validate:"required"`
	Billing    BillingConfig    `mapstructure:"billing" validate:"required"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Profiling  ProfilingConfig  `mapstructure:"profiling"`
}

type DeploymentConfig struct {
	Mode types.RunMode `mapstructure:"mode" validate:"required"`
}

type ServerConfig struct {
	Address      string        `mapstructure:"address" validate:"required"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type AuthConfig struct {
	Supabase SupabaseConfig `mapstructure:"supabase"`
}

type SupabaseConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	ServiceKey string `mapstructure:"service_key"`
	// JWTSecret verifies access tokens issued by Supabase auth (HS256).
	JWTSecret string `mapstructure:"jwt_secret"`
}

type LoggingConfig struct {
	Level          types.LogLevel `mapstructure:"level"`
	FluentdEnabled bool           `mapstructure:"fluentd_enabled"`
	FluentdHost    string         `mapstructure:"fluentd_host"`
	FluentdPort    int            `mapstructure:"fluentd_port"`
}

type PostgresConfig struct {
	Host            string        `mapstructure:"host" validate:"required"`
	Port            int           `mapstructure:"port" validate:"required"`
	User            string        `mapstructure:"user" validate:"required"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname" validate:"required"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type StripeConfig struct {
	SecretKey        string        `mapstructure:"secret_key"`
	WebhookSecret    string        `mapstructure:"webhook_secret"`
	WebhookTolerance time.Duration `mapstructure:"webhook_tolerance"`
	// APIRetries is the retry budget of the HTTP transport used for Stripe calls.
	APIRetries int `mapstructure:"api_retries"`
}

type BillingConfig struct {
	DefaultCurrency string `mapstructure:"default_currency"`
	// RejectStaleEvents skips lifecycle events older than the last applied one.
	RejectStaleEvents bool `mapstructure:"reject_stale_events"`
	// IdempotencyWindow buckets payment intent idempotency keys; identical
	// requests inside one window reuse the provider's first response.
	IdempotencyWindow time.Duration `mapstructure:"idempotency_window"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Type    string        `mapstructure:"type"`
	PlanTTL time.Duration `mapstructure:"plan_ttl"`
}

type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	UseTLS   bool          `mapstructure:"use_tls"`
	PoolSize int           `mapstructure:"pool_size"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type ProfilingConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	ServerAddress string `mapstructure:"server_address"`
}

// NewConfig loads .env (if present), config.yaml (if present) and BLDR_*
// environment variables, in increasing order of precedence.
func NewConfig() (*Configuration, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BLDR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.Billing.DefaultCurrency = types.NormalizeCurrency(cfg.Billing.DefaultCurrency)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// GetDefaultConfig returns the defaults only, for scripts and tests.
func GetDefaultConfig() *Configuration {
	v := viper.New()
	setDefaults(v)

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("invalid default config: %v", err))
	}
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.ModeLocal))

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("logging.fluentd_enabled", false)
	v.SetDefault("logging.fluentd_port", 24224)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.dbname", "bldr")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 20)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("postgres.auto_migrate", false)

	v.SetDefault("stripe.secret_key", "")
	v.SetDefault("stripe.webhook_secret", "")
	v.SetDefault("stripe.webhook_tolerance", 5*time.Minute)
	v.SetDefault("stripe.api_retries", 2)

	v.SetDefault("auth.supabase.base_url", "")
	v.SetDefault("auth.supabase.service_key", "")
	v.SetDefault("auth.supabase.jwt_secret", "")

	v.SetDefault("billing.default_currency", types.DefaultCurrency)
	v.SetDefault("billing.reject_stale_events", true)
	v.SetDefault("billing.idempotency_window", 10*time.Minute)

	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.environment", string(types.ModeLocal))
	v.SetDefault("sentry.sample_rate", 1.0)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.type", "inmemory")
	v.SetDefault("cache.plan_ttl", 30*time.Minute)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.timeout", 5*time.Second)

	v.SetDefault("profiling.enabled", false)
}

// Validate rejects configurations that cannot serve traffic. Provider and auth
// secrets are optional only in local mode.
func (c *Configuration) Validate() error {
	if !types.IsValidCurrency(c.Billing.DefaultCurrency) {
		return fmt.Errorf("billing.default_currency %q is not a valid currency code", c.Billing.DefaultCurrency)
	}
	if c.Billing.IdempotencyWindow <= 0 {
		return fmt.Errorf("billing.idempotency_window must be positive")
	}

	if c.Deployment.Mode == types.ModeLocal {
		return nil
	}

	missing := []string{}
	if c.Stripe.SecretKey == "" {
		missing = append(missing, "stripe.secret_key")
	}
	if c.Stripe.WebhookSecret == "" {
		missing = append(missing, "stripe.webhook_secret")
	}
	if c.Auth.Supabase.JWTSecret == "" {
		missing = append(missing, "auth.supabase.jwt_secret")
	}
	if c.Sentry.Enabled && c.Sentry.DSN == "" {
		missing = append(missing, "sentry.dsn")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// GetDSN returns the lib/pq connection string.
func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
