package auth

// Package auth contains simple hand-written test doubles for the account ports.
// They are safe for concurrent use so they can back httptest servers.

import (
	"context"
	"errors"
	"sync"
	"time"

	domainauth "github.com/voxa-app/voxa-api/internal/domain/auth"
	"github.com/voxa-app/voxa-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityVerifier  = (*StaticVerifier)(nil)
	_ ports.SessionStore      = (*MemorySessionStore)(nil)
	_ ports.ProfileRepository = (*MemoryProfileStore)(nil)
)

// StaticVerifier accepts a fixed set of raw ID tokens.
type StaticVerifier struct {
	VerifyFunc func(ctx context.Context, raw string) (domainauth.Identity, error)

	mu     sync.Mutex
	tokens map[string]domainauth.Identity
}

// NewStaticVerifier creates a verifier that knows no tokens yet.
func NewStaticVerifier() *StaticVerifier {
	return &StaticVerifier{tokens: make(map[string]domainauth.Identity)}
}

// Add registers raw as a valid ID token for id.
func (v *StaticVerifier) Add(raw string, id domainauth.Identity) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.tokens == nil {
		v.tokens = make(map[string]domainauth.Identity)
	}
	v.tokens[raw] = id
}

func (v *StaticVerifier) VerifyIDToken(ctx context.Context, raw string) (domainauth.Identity, error) {
	if v.VerifyFunc != nil {
		return v.VerifyFunc(ctx, raw)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	id, ok := v.tokens[raw]
	if !ok {
		return domainauth.Identity{}, domainauth.ErrInvalidCredential
	}
	if id.ExpiresAt.IsZero() {
		id.ExpiresAt = time.Now().Add(time.Hour)
	}
	return id, nil
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	// DeleteErr, when set, is returned by Delete.
	DeleteErr error

	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.Session)}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok || id == "" {
		return domainauth.Session{}, domainauth.ErrSessionNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len returns the number of live session records.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// MemoryProfileStore is an in-memory ProfileRepository with error injection.
type MemoryProfileStore struct {
	// GetErr and SetPlanErr, when set, are returned instead of touching the map.
	GetErr     error
	SetPlanErr error
	Now        func() time.Time

	mu       sync.Mutex
	profiles map[string]domainauth.Profile
	setCalls int
}

// NewMemoryProfileStore creates an empty store.
func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: make(map[string]domainauth.Profile), Now: time.Now}
}

func (m *MemoryProfileStore) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}

func (m *MemoryProfileStore) Create(_ context.Context, p domainauth.Profile) (domainauth.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[p.ID]; ok {
		return domainauth.Profile{}, domainauth.ErrProfileExists
	}
	if p.Plan == "" {
		p.Plan = domainauth.PlanFree
	}
	p.CreatedAt = m.now()
	p.UpdatedAt = p.CreatedAt
	m.profiles[p.ID] = p
	return p, nil
}

func (m *MemoryProfileStore) GetByID(_ context.Context, id string) (domainauth.Profile, error) {
	if m.GetErr != nil {
		return domainauth.Profile{}, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return domainauth.Profile{}, domainauth.ErrProfileNotFound
	}
	return p, nil
}

func (m *MemoryProfileStore) SetPlan(_ context.Context, id string, plan domainauth.Plan) error {
	if m.SetPlanErr != nil {
		return m.SetPlanErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	p, ok := m.profiles[id]
	if !ok {
		return domainauth.ErrProfileNotFound
	}
	if p.Plan != plan {
		p.Plan = plan
		p.UpdatedAt = m.now()
		m.profiles[id] = p
	}
	return nil
}

// Put stores p as-is, bypassing Create.
func (m *MemoryProfileStore) Put(p domainauth.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.ID] = p
}

// Remove deletes a profile out-of-band.
func (m *MemoryProfileStore) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.profiles, id)
}

// SetPlanCalls reports how many times SetPlan reached the map.
func (m *MemoryProfileStore) SetPlanCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setCalls
}
