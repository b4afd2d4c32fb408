package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	DB          DB     `envPrefix:"DB_"`

	ClientURL string `env:"CLIENT_URL" envDefault:"http://localhost:3000"`
	ServerURL string `env:"SERVER_URL" envDefault:"http://localhost:8080"`

	JWTSecret   string `env:"JWT_SECRET,required"`
	AdminAPIKey string `env:"ADMIN_API_KEY,required"`

	UploadsDir string `env:"UPLOADS_DIR" envDefault:"uploads"`

	Stripe Stripe `envPrefix:"STRIPE_"`
	SMTP   SMTP   `envPrefix:"SMTP_"`
}

type Stripe struct {
	SecretKey     string `env:"SECRET_KEY"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
	APIBaseURL    string `env:"API_BASE_URL" envDefault:"https://api.stripe.com"`
	Currency      string `env:"CURRENCY" envDefault:"inr"`
}

type SMTP struct {
	Host string `env:"HOST"`
	Port int    `env:"PORT" envDefault:"587"`
	User string `env:"USER"`
	Pass string `env:"PASS"`
	From string `env:"FROM"`
}

type DB struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"postgres"`
	Password string `env:"PASSWORD"`
	Name     string `env:"NAME" envDefault:"swiftcart"`
}

// DSN builds a Postgres DSN from the discrete DB_* fields. DATABASE_URL, when
// set, takes precedence over these.
func (d DB) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		d.Host, d.User, d.Password, d.Name, d.Port,
	)
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
