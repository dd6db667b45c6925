package config

import (
	"fmt"
	"time"
)

// Draft store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Wizard configures the terminal wizard.
type Wizard struct {
	RelayURL        string        `env:"RELAY_URL"         envDefault:"http://localhost:8080"`
	DeliveryTimeout time.Duration `env:"DELIVERY_TIMEOUT"  envDefault:"60s"`
	DraftStore      string        `env:"DRAFT_STORE"       envDefault:"file"`
	RedisURL        string        `env:"REDIS_URL"         envDefault:"redis://localhost:6379/0"`
	DraftTTL        time.Duration `env:"DRAFT_TTL"         envDefault:"2h"`
	DraftKey        string        `env:"DRAFT_KEY"`
	Debounce        time.Duration `env:"AUTOSAVE_DEBOUNCE" envDefault:"3s"`

	Log Log
}

// LoadWizard parses and validates wizard settings.
func LoadWizard() (Wizard, error) {
	var cfg Wizard
	if err := ParseEnv(&cfg); err != nil {
		return Wizard{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Wizard{}, err
	}
	return cfg, nil
}

// Validate checks the store selection and durations.
func (c Wizard) Validate() error {
	switch c.DraftStore {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("DRAFT_STORE: unknown store %q", c.DraftStore)
	}
	if c.DeliveryTimeout <= 0 {
		return fmt.Errorf("DELIVERY_TIMEOUT must be positive, got %s", c.DeliveryTimeout)
	}
	if c.Debounce <= 0 {
		return fmt.Errorf("AUTOSAVE_DEBOUNCE must be positive, got %s", c.Debounce)
	}
	return nil
}
