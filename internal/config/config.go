// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"betslip-wallet/pkg/db" // Import db package for its Config struct
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`
	Env        string `env:"APP_ENV" envDefault:"development"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	DB       db.Config      `envPrefix:"DB_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	Kafka    KafkaConfig    `envPrefix:"KAFKA_"`
	Gateway  GatewayConfig  `envPrefix:"GATEWAY_"`
	Fixtures FixturesConfig `envPrefix:"FIXTURES_"`
	Auth     AuthConfig     `envPrefix:"AUTH_"`
	Ledger   LedgerConfig   `envPrefix:"LEDGER_"`
}

// RedisConfig configures the odds cache and the realtime feed. An empty Addr disables both.
type RedisConfig struct {
	Addr     string        `env:"ADDR"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	OddsTTL  time.Duration `env:"ODDS_TTL" envDefault:"30s"`
}

// KafkaConfig configures the ledger event log. No brokers disables it.
type KafkaConfig struct {
	Brokers     []string `env:"BROKERS" envSeparator:","`
	LedgerTopic string   `env:"LEDGER_TOPIC" envDefault:"ledger_events"`
}

// GatewayConfig configures the mobile-money payment gateway.
type GatewayConfig struct {
	BaseURL        string        `env:"BASE_URL"`
	APIKey         string        `env:"API_KEY"`
	CallbackSecret string        `env:"CALLBACK_SECRET"`
	CallbackURL    string        `env:"CALLBACK_URL"`
	Mock           bool          `env:"MOCK" envDefault:"false"`
	Timeout        time.Duration `env:"TIMEOUT" envDefault:"15s"`
}

// FixturesConfig configures the sports-data provider.
type FixturesConfig struct {
	BaseURL string        `env:"BASE_URL" envDefault:"https://v3.football.api-sports.io"`
	APIKey  string        `env:"API_KEY"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// AuthConfig holds the secret the auth platform signs access tokens with.
type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET"`
}

// LedgerConfig holds the wagering rules' parameters.
type LedgerConfig struct {
	Currency          string          `env:"CURRENCY" envDefault:"KES"`
	StartingBonus     decimal.Decimal `env:"STARTING_BONUS" envDefault:"100"`
	DailyFee          decimal.Decimal `env:"DAILY_FEE" envDefault:"499"`
	MinWithdrawal     decimal.Decimal `env:"MIN_WITHDRAWAL" envDefault:"2000"`
	CommissionRate    decimal.Decimal `env:"COMMISSION_RATE" envDefault:"0.07"`
	MinDeposit        decimal.Decimal `env:"MIN_DEPOSIT" envDefault:"1100"`
	PromoMinDeposit   decimal.Decimal `env:"PROMO_MIN_DEPOSIT" envDefault:"499"`
	PromoStart        time.Time       `env:"PROMO_START"` // RFC3339, zero means no promotion
	PromoEnd          time.Time       `env:"PROMO_END"`
	Timezone          string          `env:"TIMEZONE" envDefault:"UTC"`
	DepositTTL        time.Duration   `env:"DEPOSIT_TTL" envDefault:"2h"`
	ReconcileSchedule string          `env:"RECONCILE_SCHEDULE" envDefault:"*/15 * * * *"`
}

// Location resolves the timezone betslip days are counted in.
func (l LedgerConfig) Location() (*time.Location, error) {
	return time.LoadLocation(l.Timezone)
}

// LoadConfig loads configuration from environment variables, after reading an
// optional .env file from the working directory.
func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the ledger cannot run with.
func (c *AppConfig) Validate() error {
	l := c.Ledger
	if l.CommissionRate.IsNegative() || l.CommissionRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("invalid LEDGER_COMMISSION_RATE %s: must be in [0, 1)", l.CommissionRate)
	}
	for name, v := range map[string]decimal.Decimal{
		"LEDGER_STARTING_BONUS":    l.StartingBonus,
		"LEDGER_DAILY_FEE":         l.DailyFee,
		"LEDGER_MIN_WITHDRAWAL":    l.MinWithdrawal,
		"LEDGER_MIN_DEPOSIT":       l.MinDeposit,
		"LEDGER_PROMO_MIN_DEPOSIT": l.PromoMinDeposit,
	} {
		if v.IsNegative() {
			return fmt.Errorf("invalid %s %s: must not be negative", name, v)
		}
	}
	if !l.PromoStart.IsZero() && !l.PromoEnd.IsZero() && !l.PromoEnd.After(l.PromoStart) {
		return fmt.Errorf("invalid promotion window: LEDGER_PROMO_END must be after LEDGER_PROMO_START")
	}
	if _, err := l.Location(); err != nil {
		return fmt.Errorf("invalid LEDGER_TIMEZONE %q: %w", l.Timezone, err)
	}
	if l.DepositTTL <= 0 {
		return fmt.Errorf("invalid LEDGER_DEPOSIT_TTL %s: must be positive", l.DepositTTL)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET is required")
	}
	if !c.Gateway.Mock && c.Gateway.BaseURL == "" {
		return errors.New("GATEWAY_BASE_URL is required unless GATEWAY_MOCK is set")
	}
	return nil
}
