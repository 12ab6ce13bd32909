package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dailycrate/dailycrate/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Postgres   PostgresConfig   `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Billing    BillingConfig    `validate:"required"`
	Cache      CacheConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

// BillingConfig drives the billing sweep: the flat subscription discount applied
// to every cycle, the wall-clock hour (UTC) the in-process scheduler fires at,
// and the failure-escalation policy for underfunded subscriptions.
type BillingConfig struct {
	SubscriptionDiscountRate decimal.Decimal            `mapstructure:"subscription_discount_rate"`
	SweepHourUTC             int                        `mapstructure:"sweep_hour_utc" validate:"min=0,max=23"`
	FailurePolicy            types.BillingFailurePolicy `mapstructure:"failure_policy"`
	MaxBillingFailures       int                        `mapstructure:"max_billing_failures"`
	SweepConcurrency         int                        `mapstructure:"sweep_concurrency"`
}

type CacheConfig struct {
	Enabled bool
}

func NewConfig() (*Configuration, error) {
	// Load .env if present; env vars still take precedence via viper
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/dailycrate")

	v.SetEnvPrefix("DAILYCRATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.Billing.SubscriptionDiscountRate.IsZero() {
		config.Billing.SubscriptionDiscountRate = DefaultSubscriptionDiscountRate
	}
	if config.Billing.FailurePolicy == "" {
		config.Billing.FailurePolicy = types.BillingFailurePolicyRetryForever
	}
	if config.Billing.SweepConcurrency <= 0 {
		config.Billing.SweepConcurrency = DefaultSweepConcurrency
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultSubscriptionDiscountRate is the flat discount applied to subscription
// cycle totals (15%).
var DefaultSubscriptionDiscountRate = decimal.NewFromFloat(0.15)

const DefaultSweepConcurrency = 4

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", types.ModeLocal)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", types.LogLevelInfo)
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "dailycrate")
	v.SetDefault("postgres.dbname", "dailycrate")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("billing.sweep_hour_utc", 2)
	v.SetDefault("billing.failure_policy", types.BillingFailurePolicyRetryForever)
	v.SetDefault("billing.max_billing_failures", 0)
	v.SetDefault("cache.enabled", true)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if err := c.Billing.FailurePolicy.Validate(); err != nil {
		return err
	}
	if c.Billing.FailurePolicy == types.BillingFailurePolicyPauseAfterN && c.Billing.MaxBillingFailures <= 0 {
		return fmt.Errorf("billing.max_billing_failures must be positive when failure_policy is pause_after_n")
	}
	return nil
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Billing: BillingConfig{
			SubscriptionDiscountRate: DefaultSubscriptionDiscountRate,
			SweepHourUTC:             2,
			FailurePolicy:            types.BillingFailurePolicyRetryForever,
			SweepConcurrency:         DefaultSweepConcurrency,
		},
		Cache: CacheConfig{Enabled: true},
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
