package utils

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Session  SessionConfig
	Payment  PaymentConfig
	Redis    RedisConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	MaxConns int32
}

type SessionConfig struct {
	ExpiryHours int
}

type PaymentConfig struct {
	StripeSecret        string
	StripeWebhookSecret string
	Currency            string
	FrontendURL         string
	GatewayTimeout      time.Duration
	GatewayMaxRetries   int64
	CheckoutHold        time.Duration
	SweepInterval       time.Duration
	CallbackSecret      string
}

type RedisConfig struct {
	URL      string
	CacheTTL time.Duration
}

// Validate checks the settings the HTTP server cannot start without.
func (c *Config) Validate() error {
	if c.Payment.StripeSecret == "" {
		return errors.New("STRIPE_SECRET is required")
	}
	if c.Payment.FrontendURL == "" {
		return errors.New("FRONTEND_URL is required")
	}
	if c.Payment.GatewayTimeout <= 0 {
		return errors.New("GATEWAY_TIMEOUT_SECONDS must be positive")
	}
	if c.Payment.CheckoutHold <= 0 {
		return errors.New("CHECKOUT_HOLD_MINUTES must be positive")
	}
	return nil
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")

	v.SetDefault("APP_NAME", "car-rental")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("SESSION_EXPIRY_HOURS", 24)
	v.SetDefault("PAYMENT_CURRENCY", "usd")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("GATEWAY_TIMEOUT_SECONDS", 15)
	v.SetDefault("GATEWAY_MAX_RETRIES", 2)
	v.SetDefault("CHECKOUT_HOLD_MINUTES", 30)
	v.SetDefault("SWEEP_INTERVAL_MINUTES", 5)
	v.SetDefault("CAR_CACHE_TTL_SECONDS", 300)

	// .env is optional, plain environment variables are enough in containers
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
	}

	v.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    v.GetString("APP_NAME"),
			Port:    v.GetString("PORT"),
			Debug:   v.GetBool("DEBUG"),
			LogPath: v.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASS"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
		},
		Session: SessionConfig{
			ExpiryHours: v.GetInt("SESSION_EXPIRY_HOURS"),
		},
		Payment: PaymentConfig{
			StripeSecret:        v.GetString("STRIPE_SECRET"),
			StripeWebhookSecret: v.GetString("STRIPE_WEBHOOK_SECRET"),
			Currency:            v.GetString("PAYMENT_CURRENCY"),
			FrontendURL:         v.GetString("FRONTEND_URL"),
			GatewayTimeout:      time.Duration(v.GetInt("GATEWAY_TIMEOUT_SECONDS")) * time.Second,
			GatewayMaxRetries:   v.GetInt64("GATEWAY_MAX_RETRIES"),
			CheckoutHold:        time.Duration(v.GetInt("CHECKOUT_HOLD_MINUTES")) * time.Minute,
			SweepInterval:       time.Duration(v.GetInt("SWEEP_INTERVAL_MINUTES")) * time.Minute,
			CallbackSecret:      v.GetString("CALLBACK_SECRET"),
		},
		Redis: RedisConfig{
			URL:      v.GetString("REDIS_URL"),
			CacheTTL: time.Duration(v.GetInt("CAR_CACHE_TTL_SECONDS")) * time.Second,
		},
	}

	return config, nil
}
