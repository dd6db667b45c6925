package config

import (
	"errors"
	"fmt"
	"net/mail"
)

// Mail backends.
const (
	BackendSMTP   = "smtp"
	BackendResend = "resend"
	BackendLog    = "log"
)

// Relay configures the mail relay server.
type Relay struct {
	Addr        string `env:"RELAY_ADDR"   envDefault:":8080"`
	ClinicEmail string `env:"CLINIC_EMAIL,required"`
	MailFrom    string `env:"MAIL_FROM"    envDefault:"onboarding@resend.dev"`
	Backend     string `env:"MAIL_BACKEND" envDefault:"log"`

	SMTP   SMTP
	Resend Resend

	RatePerMinute int   `env:"RELAY_RATE_PER_MINUTE" envDefault:"10"`
	RateBurst     int   `env:"RELAY_RATE_BURST"      envDefault:"5"`
	MaxBodyBytes  int64 `env:"MAX_BODY_BYTES"        envDefault:"15728640"`

	Log Log
}

// SMTP holds the SMTP backend settings.
type SMTP struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT"     envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
}

// Resend holds the Resend API backend settings.
type Resend struct {
	APIKey  string `env:"RESEND_API_KEY"`
	BaseURL string `env:"RESEND_BASE_URL" envDefault:"https://api.resend.com"`
}

// LoadRelay parses and validates relay settings.
func LoadRelay() (Relay, error) {
	var cfg Relay
	if err := ParseEnv(&cfg); err != nil {
		return Relay{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Relay{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints the env tags cannot express.
func (c Relay) Validate() error {
	var errs []error
	if _, err := mail.ParseAddress(c.ClinicEmail); err != nil {
		errs = append(errs, fmt.Errorf("CLINIC_EMAIL: %w", err))
	}
	if _, err := mail.ParseAddress(c.MailFrom); err != nil {
		errs = append(errs, fmt.Errorf("MAIL_FROM: %w", err))
	}
	switch c.Backend {
	case BackendSMTP:
		if c.SMTP.Host == "" {
			errs = append(errs, errors.New("SMTP_HOST is required for the smtp backend"))
		}
	case BackendResend:
		if c.Resend.APIKey == "" {
			errs = append(errs, errors.New("RESEND_API_KEY is required for the resend backend"))
		}
	case BackendLog:
	default:
		errs = append(errs, fmt.Errorf("MAIL_BACKEND: unknown backend %q", c.Backend))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("MAX_BODY_BYTES must be positive"))
	}
	return errors.Join(errs...)
}
