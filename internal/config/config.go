package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ihsanfund/donations/internal/types"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment   DeploymentConfig   `validate:"required"`
	Server       ServerConfig       `validate:"required"`
	Logging      LoggingConfig      `validate:"required"`
	Postgres     PostgresConfig     `validate:"required"`
	MyFatoorah   MyFatoorahConfig   `mapstructure:"myfatoorah"`
	Stripe       StripeConfig       `mapstructure:"stripe"`
	Payments     PaymentsConfig     `mapstructure:"payments" validate:"required"`
	Events       EventsConfig       `mapstructure:"events"`
	WebhookDedup WebhookDedupConfig `mapstructure:"webhook_dedup"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
	Sentry       SentryConfig       `mapstructure:"sentry"`
	Auth         AuthConfig         `mapstructure:"auth"`
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
	// AllowedOrigins lists the frontends allowed to call the API from a browser
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host                   string `mapstructure:"host"`
	Port                   int    `mapstructure:"port"`
	User                   string `mapstructure:"user"`
	Password               string `mapstructure:"password"`
	DBName                 string `mapstructure:"dbname"`
	SSLMode                string `mapstructure:"sslmode"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" default:"10"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" default:"5"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" default:"30"`
}

// MyFatoorahConfig holds credentials for the invoice gateway. WebhookSecret is
// optional; without it webhook signatures are not checked.
type MyFatoorahConfig struct {
	BaseURL       string `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey        string `mapstructure:"api_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

type PaymentsConfig struct {
	// PublicBaseURL is where providers send the donor back to, e.g. https://api.example.org
	PublicBaseURL string `mapstructure:"public_base_url" validate:"required,url"`
	// RedirectURL is the frontend page that renders the donation outcome
	RedirectURL    string        `mapstructure:"redirect_url" validate:"required,url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	StatusRetries  int           `mapstructure:"status_retries"`
	// ReconcileConcurrency bounds the admin batch reconcile fan-out
	ReconcileConcurrency int `mapstructure:"reconcile_concurrency"`
}

type EventsConfig struct {
	Topic           string        `mapstructure:"topic"`
	OutputBuffer    int64         `mapstructure:"output_buffer"`
	MaxRetries      int           `mapstructure:"max_retries"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
}

type WebhookDedupConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type RateLimitConfig struct {
	WebhookRPS   float64 `mapstructure:"webhook_rps"`
	WebhookBurst int     `mapstructure:"webhook_burst"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

type AuthConfig struct {
	Secret string `mapstructure:"secret"`
}

func NewConfig() (*Configuration, error) {
	// .env is a local convenience, absence is fine
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/donations")

	v.SetEnvPrefix("DONATIONS")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", types.ModeLocal)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", types.LogLevelInfo)
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime_minutes", 30)
	v.SetDefault("myfatoorah.base_url", "https://apitest.myfatoorah.com")
	v.SetDefault("payments.request_timeout", 30*time.Second)
	v.SetDefault("payments.status_retries", 3)
	v.SetDefault("payments.reconcile_concurrency", 4)
	v.SetDefault("events.topic", "donation_events")
	v.SetDefault("events.output_buffer", 100)
	v.SetDefault("events.max_retries", 3)
	v.SetDefault("events.initial_interval", time.Second)
	v.SetDefault("events.max_interval", 10*time.Second)
	v.SetDefault("events.multiplier", 2.0)
	v.SetDefault("webhook_dedup.ttl", 10*time.Minute)
	v.SetDefault("rate_limit.webhook_rps", 50)
	v.SetDefault("rate_limit.webhook_burst", 100)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a configuration usable by tests and scripts
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080", AllowedOrigins: []string{"http://localhost:3000"}},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Payments: PaymentsConfig{
			PublicBaseURL:        "http://localhost:8080",
			RedirectURL:          "http://localhost:3000/donations/result",
			RequestTimeout:       30 * time.Second,
			StatusRetries:        3,
			ReconcileConcurrency: 4,
		},
		Events: EventsConfig{
			Topic:           "donation_events",
			OutputBuffer:    100,
			MaxRetries:      3,
			InitialInterval: time.Second,
			MaxInterval:     10 * time.Second,
			Multiplier:      2,
		},
		WebhookDedup: WebhookDedupConfig{TTL: 10 * time.Minute},
		RateLimit:    RateLimitConfig{WebhookRPS: 50, WebhookBurst: 100},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}
