package config

import (
	"strings"

	"golang.org/x/net/publicsuffix"
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the public base URL of the application (e.g., "https://app.example.com").
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request host.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// AuthRateLimit is the sustained per-client request rate allowed on /api/auth routes.
	AuthRateLimit float64 `env:"HTTP_AUTH_RATE_LIMIT" envDefault:"5"`
	// AuthRateBurst is the burst size for AuthRateLimit.
	AuthRateBurst int `env:"HTTP_AUTH_RATE_BURST" envDefault:"10"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	h.CookieDomain = normalizeCookieDomain(h.CookieDomain)
	if h.AuthRateLimit <= 0 {
		h.AuthRateLimit = 5
	}
	if h.AuthRateBurst < 1 {
		h.AuthRateBurst = 1
	}
}

// normalizeCookieDomain drops a configured domain that is itself a public suffix
// ("com", "co.uk"); browsers reject such cookies outright.
func normalizeCookieDomain(domain string) string {
	d := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), ".")
	if d == "" {
		return ""
	}
	if suffix, _ := publicsuffix.PublicSuffix(d); suffix == d {
		return ""
	}
	return d
}
