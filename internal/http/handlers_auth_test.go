package httpx

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/voxa-app/voxa-api/internal/domain/auth"
)

func TestSignUp(t *testing.T) {
	app := newTestApp(t)
	token := app.addUser("uid-new", "")

	rec := app.do(t, testRequest{method: http.MethodPost, path: "/api/auth/sign-up",
		body: map[string]any{"idToken": token, "name": "  Ada  "}})

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Account created successfully. Please sign in.", body["message"])

	profile, err := app.profiles.GetByID(context.Background(), "uid-new")
	require.NoError(t, err)
	assert.Equal(t, "Ada", profile.Name)
	assert.Equal(t, "uid-new@example.com", profile.Email)
	assert.Equal(t, domainauth.PlanFree, profile.Plan)
	assert.Empty(t, setCookieHeaders(rec, SessionCookieName), "sign-up must not sign the user in")
}

func TestSignUp_Duplicate(t *testing.T) {
	app := newTestApp(t)
	token := app.addUser("uid-1", domainauth.PlanPremium)

	rec := app.do(t, testRequest{method: http.MethodPost, path: "/api/auth/sign-up",
		body: map[string]any{"idToken": token, "name": "Someone Else"}})

	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "User already exists. Please sign in.", body["message"])

	profile, err := app.profiles.GetByID(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "User uid-1", profile.Name)
	assert.Equal(t, domainauth.PlanPremium, profile.Plan)
}

func TestSignUp_BadRequests(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name string
		body any
		want int
	}{
		{name: "missing token", body: map[string]any{"name": "x"}, want: http.StatusBadRequest},
		{name: "unknown token", body: map[string]any{"idToken": "forged"}, want: http.StatusUnauthorized},
		{name: "wrong type", body: map[string]any{"idToken": 42}, want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(t, testRequest{method: http.MethodPost, path: "/api/auth/sign-up", body: tt.body})
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, false, decodeBody(t, rec)["success"])
		})
	}
}

func TestSignIn_SetsSessionCookie(t *testing.T) {
	app := newTestApp(t)
	token := app.addUser("uid-1", domainauth.PlanFree)

	rec := app.do(t, testRequest{method: http.MethodPost, path: "/api/auth/sign-in",
		body: map[string]any{"idToken": token}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Signed in successfully", decodeBody(t, rec)["message"])

	c := findCookie(rec, SessionCookieName)
	require.NotNil(t, c)
	assert.NotEmpty(t, c.Value)
	assert.NotEqual(t, token, c.Value, "the raw ID token must never be the session credential")
	assert.True(t, c.HttpOnly)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, 604800, c.MaxAge)
	assert.False(t, c.Secure)
	assert.Equal(t, 1, app.sessions.Len())
}

func TestSignIn_SecureCookieOutsideDev(t *testing.T) {
	app := newTestApp(t, testAppOptions{services: func(s *RouterServices) {
		s.Cookies = CookieOptions{Secure: true}
	}})
	token := app.addUser("uid-1", domainauth.PlanFree)

	rec := app.do(t, testRequest{method: http.MethodPost, path: "/api/auth/sign-in",
		body: map[string]any{"idToken": token}})

	require.Equal(t, http.StatusOK, rec.Code)
	c := findCookie(rec, SessionCookieName)
	require.NotNil(t, c)
	assert.True(t, c.Secure)
}

func TestSignIn_Failures(t *testing.T) {
	app := newTestApp(t)
	unknown := app.addUser("uid-without-profile", "")

	tests := []struct {
		name    string
		idToken string
		code    int
		message string
	}{
		{name: "no profile", idToken: unknown, code: http.StatusNotFound, message: "User does not exist. Create an account."},
		{name: "invalid token", idToken: "forged", code: http.StatusUnauthorized, message: "Invalid or expired ID token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(t, testRequest{method: http.MethodPost, path: "/api/auth/sign-in",
				body: map[string]any{"idToken": tt.idToken}})
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.message, decodeBody(t, rec)["message"])
			assert.Nil(t, findCookie(rec, SessionCookieName))
		})
	}
	assert.Equal(t, 0, app.sessions.Len())
}

func TestSignIn_BearerTransport(t *testing.T) {
	app := newTestApp(t)
	token := app.addUser("uid-1", domainauth.PlanPremium)

	rec := app.do(t, testRequest{method: http.MethodPost, path: "/api/auth/sign-in",
		body:    map[string]any{"idToken": token},
		headers: map[string]string{SessionTransportHeader: "bearer"}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, findCookie(rec, SessionCookieName))
	body := decodeBody(t, rec)
	credential, ok := body["token"].(string)
	require.True(t, ok)
	assert.NotEmpty(t, body["expiresAt"])

	me := app.do(t, testRequest{method: http.MethodGet, path: "/api/auth/me",
		headers: map[string]string{"Authorization": "Bearer " + credential}})
	require.Equal(t, http.StatusOK, me.Code)
	meBody := decodeBody(t, me)
	assert.Equal(t, true, meBody["authenticated"])
	assert.Equal(t, map[string]any{"premium-feature": true}, meBody["capabilities"])
}

func TestLogout_ClearsCookiesAndRevokes(t *testing.T) {
	app := newTestApp(t)
	app.addUser("uid-1", domainauth.PlanFree)
	credential := app.signIn(t, "uid-1")

	rec := app.do(t, testRequest{method: http.MethodPost, path: "/api/auth/logout", session: credential})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Cookies cleared successfully", body["message"])

	for _, name := range []string{"session", "token", "authToken", "firebaseToken", "idToken"} {
		headers := setCookieHeaders(rec, name)
		require.Len(t, headers, 1, name)
		assert.Contains(t, headers[0], "Max-Age=0", name)
		assert.Contains(t, headers[0], "Path=/", name)
		assert.Equal(t, "", findCookie(rec, name).Value, name)
	}
	assert.Equal(t, 0, app.sessions.Len())

	me := app.do(t, testRequest{method: http.MethodGet, path: "/api/auth/me", session: credential})
	assert.Equal(t, false, decodeBody(t, me)["authenticated"], "a revoked credential must not resolve")
}

func TestLogout_Idempotent(t *testing.T) {
	app := newTestApp(t)

	for _, credential := range []string{"", "garbage"} {
		rec := app.do(t, testRequest{method: http.MethodPost, path: "/api/auth/logout", session: credential})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, setCookieHeaders(rec, SessionCookieName), 1)
	}
}

func TestLogout_RevokeFailure(t *testing.T) {
	app := newTestApp(t)
	app.addUser("uid-1", domainauth.PlanFree)
	credential := app.signIn(t, "uid-1")
	app.sessions.DeleteErr = errors.New("redis down")

	rec := app.do(t, testRequest{method: http.MethodPost, path: "/api/auth/logout", session: credential})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Failed to clear cookies", body["message"])
	assert.Len(t, setCookieHeaders(rec, SessionCookieName), 1, "cookies are cleared even when revocation fails")
}

func TestMe(t *testing.T) {
	app := newTestApp(t)
	app.addUser("uid-free", domainauth.PlanFree)
	credential := app.signIn(t, "uid-free")

	t.Run("anonymous", func(t *testing.T) {
		body := decodeBody(t, app.do(t, testRequest{method: http.MethodGet, path: "/api/auth/me"}))
		assert.Equal(t, false, body["authenticated"])
		assert.NotContains(t, body, "user")
		assert.Equal(t, map[string]any{"premium-feature": false}, body["capabilities"])
	})

	t.Run("free user", func(t *testing.T) {
		body := decodeBody(t, app.do(t, testRequest{method: http.MethodGet, path: "/api/auth/me", session: credential}))
		assert.Equal(t, true, body["authenticated"])
		user, ok := body["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "uid-free", user["id"])
		assert.Equal(t, "free", user["plan"])
		assert.Equal(t, map[string]any{"premium-feature": false}, body["capabilities"])
	})

	t.Run("tampered credential", func(t *testing.T) {
		body := decodeBody(t, app.do(t, testRequest{method: http.MethodGet, path: "/api/auth/me", session: credential + "x"}))
		assert.Equal(t, false, body["authenticated"])
	})
}
