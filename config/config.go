package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Ledger backends
const (
	LedgerPostgres = "postgres"
	LedgerRedis    = "redis"
)

type Config struct {
	App struct {
		Env         Environment `env:"APP_ENV" envDefault:"development"`
		Port        string      `env:"PORT" envDefault:"8000"`
		Timezone    string      `env:"APP_TIMEZONE" envDefault:"Asia/Kolkata"`
		LogLevel    string      `env:"LOG_LEVEL" envDefault:"info"`
		CORSOrigins string      `env:"CORS_ORIGINS" envDefault:"*"`
	}

	Database struct {
		URL string `env:"DATABASE_URL,required,notEmpty"`
	}

	Redis struct {
		Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
		Password string `env:"REDIS_PASSWORD"`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Auth struct {
		JWTSecret string `env:"JWT_SECRET,required,notEmpty"`
	}

	Scheduling struct {
		LedgerBackend      string        `env:"LEDGER_BACKEND" envDefault:"postgres"`
		SlotMinutes        int           `env:"SLOT_MINUTES" envDefault:"30"`
		BookingHorizonDays int           `env:"BOOKING_HORIZON_DAYS" envDefault:"60"`
		ReconcileCron      string        `env:"RECONCILE_CRON" envDefault:"*/5 * * * *"`
		ReconcileLookback  time.Duration `env:"RECONCILE_LOOKBACK" envDefault:"24h"`
		OrphanGrace        time.Duration `env:"RECONCILE_ORPHAN_GRACE" envDefault:"5m"`
		ReminderCron       string        `env:"REMINDER_CRON" envDefault:"* * * * *"`
	}

	SMTP struct {
		Enabled  bool   `env:"SMTP_ENABLED" envDefault:"false"`
		Host     string `env:"SMTP_HOST"`
		Port     int    `env:"SMTP_PORT" envDefault:"587"`
		User     string `env:"EMAIL_USER"`
		Password string `env:"EMAIL_PASS"`
	}

	location *time.Location
}

// Load reads an optional .env file and parses the environment into a Config.
func Load() (*Config, error) {
	// A missing .env is fine; plain environment variables still apply.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	c.App.Env = Environment(strings.ToLower(string(c.App.Env)))
	c.Scheduling.LedgerBackend = strings.ToLower(strings.TrimSpace(c.Scheduling.LedgerBackend))

	switch c.Scheduling.LedgerBackend {
	case LedgerPostgres, LedgerRedis:
	default:
		return fmt.Errorf("config: unknown LEDGER_BACKEND %q", c.Scheduling.LedgerBackend)
	}
	if c.Scheduling.SlotMinutes <= 0 || c.Scheduling.SlotMinutes > 24*60 {
		return fmt.Errorf("config: SLOT_MINUTES must be between 1 and 1440, got %d", c.Scheduling.SlotMinutes)
	}
	if c.Scheduling.BookingHorizonDays < 0 {
		return fmt.Errorf("config: BOOKING_HORIZON_DAYS must not be negative")
	}
	if c.Scheduling.OrphanGrace < 0 {
		return fmt.Errorf("config: RECONCILE_ORPHAN_GRACE must not be negative")
	}
	if c.SMTP.Enabled && c.SMTP.Host == "" {
		return fmt.Errorf("config: SMTP_HOST is required when SMTP_ENABLED is set")
	}

	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return fmt.Errorf("config: load timezone %q: %w", c.App.Timezone, err)
	}
	c.location = loc
	return nil
}

// Location is the time zone in which calendar dates and slot times are interpreted.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == EnvDevelopment
}

// AllowedOrigins splits CORS_ORIGINS into the comma separated form fiber's cors middleware expects.
func (c *Config) AllowedOrigins() string {
	parts := strings.Split(c.App.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return "*"
	}
	return strings.Join(out, ",")
}
