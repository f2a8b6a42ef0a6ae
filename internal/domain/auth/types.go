package auth

// Package auth contains domain-level types for identities, sessions, profiles and plans.
// It is pure and free of framework/adapter concerns.

import (
	"errors"
	"time"
)

// SessionTTL is the fixed lifetime of a session credential.
const SessionTTL = 7 * 24 * time.Hour

// Plan is the subscription tier stored on a profile.
// Keep string form for easy persistence and JSON.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// Valid reports whether p is a known plan.
func (p Plan) Valid() bool { return p == PlanFree || p == PlanPremium }

// Capability names a plan-gated permission.
type Capability string

// CapabilityPremiumFeature unlocks premium interview actions.
const CapabilityPremiumFeature Capability = "premium-feature"

// Sentinel errors shared by services and adapters.
var (
	// ErrInvalidCredential covers missing, malformed, expired, or revoked tokens.
	ErrInvalidCredential = errors.New("invalid or missing credential")
	// ErrSessionNotFound means the session record was revoked or has expired.
	ErrSessionNotFound = errors.New("session not found")
	// ErrProfileNotFound means a verified identity has no provisioned profile.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrProfileExists is returned by sign-up when the UID already has a profile.
	ErrProfileExists = errors.New("profile already exists")
	// ErrPaymentNotVerified is returned when an upgrade cannot be tied to a successful payment.
	ErrPaymentNotVerified = errors.New("payment not verified")
)

// Identity represents the principal asserted by a verified IdP ID token.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	UserID    string // stable IdP subject (UID)
	Name      string
	Email     string
	ExpiresAt time.Time // expiry of the ID token itself, not the session
}

// Session is the server-side record backing an issued session credential.
// ID matches the credential's token id so a credential can be revoked by deleting the record.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool { return !now.Before(s.ExpiresAt) }

// Profile is the persisted user record keyed by IdP UID.
type Profile struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Plan       Plan           `json:"plan"`
	Attributes map[string]any `json:"attributes,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// IsPremium returns true if the profile is on the premium plan.
func (p Profile) IsPremium() bool { return p.Plan == PlanPremium }

// Principal is the result of resolving a request's credential: either anonymous
// or authenticated with a profile. The zero value is anonymous.
type Principal struct {
	profile *Profile
}

// Anonymous returns the unauthenticated principal.
func Anonymous() Principal { return Principal{} }

// Authenticated returns a principal bound to p.
func Authenticated(p Profile) Principal { return Principal{profile: &p} }

// IsAuthenticated reports whether the principal carries a profile.
func (p Principal) IsAuthenticated() bool { return p.profile != nil }

// Profile returns the bound profile and true, or the zero profile and false when anonymous.
func (p Principal) Profile() (Profile, bool) {
	if p.profile == nil {
		return Profile{}, false
	}
	return *p.profile, true
}

// UserID returns the profile id, or "" when anonymous.
func (p Principal) UserID() string {
	if p.profile == nil {
		return ""
	}
	return p.profile.ID
}
