package service

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/voxa-app/voxa-api/internal/adapters/sessiontoken"
	domainauth "github.com/voxa-app/voxa-api/internal/domain/auth"
	mocks "github.com/voxa-app/voxa-api/internal/mocks/auth"
	"github.com/voxa-app/voxa-api/internal/observability/metrics"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// recordingMetrics captures account observations.
type recordingMetrics struct {
	mu     sync.Mutex
	events []metrics.AccountMetric
}

func (r *recordingMetrics) RecordAccount(in metrics.AccountMetric) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, in)
}

func (r *recordingMetrics) results(event string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if e.Event == event {
			out = append(out, e.Result)
		}
	}
	return out
}

// fixture wires the session and account services to in-memory fakes.
type fixture struct {
	verifier *mocks.StaticVerifier
	sessions *mocks.MemorySessionStore
	profiles *mocks.MemoryProfileStore
	signer   *sessiontoken.Signer
	metrics  *recordingMetrics
	logs     *bytes.Buffer

	session *SessionService
	account *AccountService
}

type fixtureOptions struct {
	now func() time.Time
	ttl time.Duration
}

func newFixture(t *testing.T, opts ...fixtureOptions) *fixture {
	t.Helper()
	var o fixtureOptions
	if len(opts) > 0 {
		o = opts[0]
	}

	signer, err := sessiontoken.NewSigner([]byte(testSecret), "voxa-test")
	require.NoError(t, err)

	f := &fixture{
		verifier: mocks.NewStaticVerifier(),
		sessions: mocks.NewMemorySessionStore(),
		profiles: mocks.NewMemoryProfileStore(),
		signer:   signer,
		metrics:  &recordingMetrics{},
		logs:     &bytes.Buffer{},
	}
	telemetry := Telemetry{
		Logger:  slog.New(slog.NewJSONHandler(f.logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
		Metrics: f.metrics,
	}

	f.session = NewSessionService(SessionServiceOptions{
		Credentials: CredentialDeps{Verifier: f.verifier, Issuer: signer, Sessions: f.sessions},
		Profiles:    f.profiles,
		Settings:    SessionSettings{TTL: o.ttl, Now: o.now, Telemetry: telemetry},
	})
	f.account = NewAccountService(AccountServiceOptions{
		Verifier:  f.verifier,
		Profiles:  f.profiles,
		Telemetry: telemetry,
	})
	return f
}

// addUser registers an ID token for uid and optionally provisions its profile.
func (f *fixture) addUser(uid string, plan domainauth.Plan) string {
	token := "id-token-" + uid
	f.verifier.Add(token, domainauth.Identity{UserID: uid, Name: "User " + uid, Email: uid + "@example.com"})
	if plan != "" {
		f.profiles.Put(domainauth.Profile{ID: uid, Name: "User " + uid, Email: uid + "@example.com", Plan: plan})
	}
	return token
}

func (f *fixture) signIn(t *testing.T, uid string) string {
	t.Helper()
	issued, err := f.session.CreateSession(context.Background(), "id-token-"+uid)
	require.NoError(t, err)
	return issued.Token
}
