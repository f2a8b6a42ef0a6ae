package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrincipal(t *testing.T) {
	t.Run("zero value is anonymous", func(t *testing.T) {
		var p Principal
		assert.False(t, p.IsAuthenticated())
		assert.Empty(t, p.UserID())
		_, ok := p.Profile()
		assert.False(t, ok)
	})

	t.Run("anonymous", func(t *testing.T) {
		p := Anonymous()
		assert.False(t, p.IsAuthenticated())
		assert.Equal(t, Principal{}, p)
	})

	t.Run("authenticated", func(t *testing.T) {
		profile := Profile{ID: "uid-1", Email: "a@example.com", Plan: PlanFree}
		p := Authenticated(profile)

		assert.True(t, p.IsAuthenticated())
		assert.Equal(t, "uid-1", p.UserID())
		got, ok := p.Profile()
		assert.True(t, ok)
		assert.Equal(t, profile, got)
	})

	t.Run("profile is copied", func(t *testing.T) {
		profile := Profile{ID: "uid-1", Plan: PlanFree}
		p := Authenticated(profile)
		profile.Plan = PlanPremium

		got, _ := p.Profile()
		assert.Equal(t, PlanFree, got.Plan)
	})
}

func TestPlan_Valid(t *testing.T) {
	tests := []struct {
		plan Plan
		want bool
	}{
		{plan: PlanFree, want: true},
		{plan: PlanPremium, want: true},
		{plan: "", want: false},
		{plan: "Premium", want: false},
		{plan: "enterprise", want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.plan.Valid(), "plan %q", tt.plan)
	}
}

func TestProfile_IsPremium(t *testing.T) {
	assert.True(t, Profile{Plan: PlanPremium}.IsPremium())
	assert.False(t, Profile{Plan: PlanFree}.IsPremium())
	assert.False(t, Profile{}.IsPremium())
}

func TestSession_Expired(t *testing.T) {
	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := Session{ID: "sid", UserID: "uid-1", IssuedAt: issued, ExpiresAt: issued.Add(SessionTTL)}

	assert.False(t, s.Expired(issued))
	assert.False(t, s.Expired(s.ExpiresAt.Add(-time.Nanosecond)))
	assert.True(t, s.Expired(s.ExpiresAt), "a session is expired at its expiry instant")
	assert.True(t, s.Expired(s.ExpiresAt.Add(time.Second)))
}

func TestSessionTTL(t *testing.T) {
	assert.Equal(t, 168*time.Hour, SessionTTL)
	assert.Equal(t, 604800, int(SessionTTL/time.Second))
}
