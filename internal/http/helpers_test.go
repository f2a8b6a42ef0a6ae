package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/voxa-app/voxa-api/internal/adapters/sessiontoken"
	domainauth "github.com/voxa-app/voxa-api/internal/domain/auth"
	"github.com/voxa-app/voxa-api/internal/domain/billing"
	authfakes "github.com/voxa-app/voxa-api/internal/mocks/auth"
	"github.com/voxa-app/voxa-api/internal/ports"
	"github.com/voxa-app/voxa-api/internal/service"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// testApp wires the real services to in-memory fakes behind NewRouter.
type testApp struct {
	verifier *authfakes.StaticVerifier
	sessions *authfakes.MemorySessionStore
	profiles *authfakes.MemoryProfileStore
	session  *service.SessionService
	handler  http.Handler
}

type testAppOptions struct {
	gateway  ports.PaymentGateway
	verify   bool
	services func(*RouterServices)
}

func newTestApp(t *testing.T, opts ...testAppOptions) *testApp {
	t.Helper()
	var o testAppOptions
	if len(opts) > 0 {
		o = opts[0]
	}

	signer, err := sessiontoken.NewSigner([]byte(testSecret), "voxa-test")
	require.NoError(t, err)

	app := &testApp{
		verifier: authfakes.NewStaticVerifier(),
		sessions: authfakes.NewMemorySessionStore(),
		profiles: authfakes.NewMemoryProfileStore(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	telemetry := service.Telemetry{Logger: logger}

	app.session = service.NewSessionService(service.SessionServiceOptions{
		Credentials: service.CredentialDeps{Verifier: app.verifier, Issuer: signer, Sessions: app.sessions},
		Profiles:    app.profiles,
		Settings:    service.SessionSettings{Telemetry: telemetry},
	})
	accounts := service.NewAccountService(service.AccountServiceOptions{
		Verifier:  app.verifier,
		Profiles:  app.profiles,
		Telemetry: telemetry,
	})
	upgrades := service.NewUpgradeService(service.UpgradeServiceOptions{
		Profiles: app.profiles,
		Checkout: service.CheckoutConfig{
			Gateway: o.gateway,
			Price:   billing.Price{Amount: 999, Currency: "usd"},
			Verify:  o.verify,
		},
		Telemetry: telemetry,
	})

	services := RouterServices{
		Sessions:   app.session,
		Accounts:   accounts,
		Upgrades:   upgrades,
		Checkout:   CheckoutView{PublishableKey: "pk_test_123", Price: billing.Price{Amount: 999, Currency: "usd"}},
		TemplateFS: os.DirFS(TemplatePathFromTest),
		Logger:     logger,
	}
	if o.services != nil {
		o.services(&services)
	}
	app.handler = NewRouter(services)
	return app
}

// addUser registers an ID token for uid and, when plan is set, provisions the profile.
func (a *testApp) addUser(uid string, plan domainauth.Plan) string {
	token := "id-token-" + uid
	a.verifier.Add(token, domainauth.Identity{UserID: uid, Name: "User " + uid, Email: uid + "@example.com"})
	if plan != "" {
		a.profiles.Put(domainauth.Profile{ID: uid, Name: "User " + uid, Email: uid + "@example.com", Plan: plan})
	}
	return token
}

// signIn returns a valid session credential for uid.
func (a *testApp) signIn(t *testing.T, uid string) string {
	t.Helper()
	issued, err := a.session.CreateSession(context.Background(), "id-token-"+uid)
	require.NoError(t, err)
	return issued.Token
}

type testRequest struct {
	method  string
	path    string
	body    any
	session string
	headers map[string]string
}

func (a *testApp) do(t *testing.T, tr testRequest) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if tr.body != nil {
		raw, err := json.Marshal(tr.body)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(tr.method, tr.path, body)
	if tr.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tr.session != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tr.session})
	}
	for k, v := range tr.headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func setCookieHeaders(rec *httptest.ResponseRecorder, name string) []string {
	var out []string
	for _, h := range rec.Header().Values("Set-Cookie") {
		if strings.HasPrefix(h, name+"=") {
			out = append(out, h)
		}
	}
	return out
}
