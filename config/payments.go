package config

import (
	"strings"
	"time"
)

// PaymentsConfig configures the payment processor used for premium purchases.
type PaymentsConfig struct {
	// SecretKey is the processor API secret. Empty disables payment-intent creation and verification.
	SecretKey string `env:"SECRET_KEY"`
	// PublishableKey is handed to the browser checkout page.
	PublishableKey string `env:"PUBLISHABLE_KEY"`
	APIBase        string `env:"API_BASE"    envDefault:"https://api.stripe.com"`
	// PremiumAmount is the one-time premium price in minor units.
	PremiumAmount int64         `env:"PREMIUM_AMOUNT" envDefault:"999"`
	Currency      string        `env:"CURRENCY"       envDefault:"usd"`
	Timeout       time.Duration `env:"TIMEOUT"        envDefault:"10s"`
	// VerifyUpgrades requires a succeeded payment intent owned by the caller before upgrading.
	VerifyUpgrades bool `env:"VERIFY_UPGRADES" envDefault:"true"`
}

// Sanitize normalises payment settings.
func (p *PaymentsConfig) Sanitize() {
	p.SecretKey = strings.TrimSpace(p.SecretKey)
	p.PublishableKey = strings.TrimSpace(p.PublishableKey)
	p.APIBase = strings.TrimRight(strings.TrimSpace(p.APIBase), "/")
	if p.APIBase == "" {
		p.APIBase = "https://api.stripe.com"
	}
	p.Currency = strings.ToLower(strings.TrimSpace(p.Currency))
	if p.Currency == "" {
		p.Currency = "usd"
	}
	if p.PremiumAmount <= 0 {
		p.PremiumAmount = 999
	}
	if p.Timeout <= 0 {
		p.Timeout = 10 * time.Second
	}
	if p.SecretKey == "" {
		p.VerifyUpgrades = false
	}
}

// Enabled reports whether a payment processor is configured.
func (p *PaymentsConfig) Enabled() bool {
	return p.SecretKey != ""
}
