package httpx

import (
	"net/http"
	"strings"
	"time"

	domainauth "github.com/voxa-app/voxa-api/internal/domain/auth"
)

// SessionCookieName carries the session credential for browser clients.
const SessionCookieName = "session"

// legacyAuthCookies are cleared on logout alongside the session cookie. Older
// clients stored identity-provider tokens under these names.
//
//nolint:gochecknoglobals // static read-only list
var legacyAuthCookies = []string{"token", "authToken", "firebaseToken", "idToken"}

// CookieOptions controls attributes shared by every auth cookie.
type CookieOptions struct {
	Domain string
	// Secure forces the Secure attribute; TLS requests always get it.
	Secure bool
}

func (o CookieOptions) secure(r *http.Request) bool {
	return o.Secure || r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// setSessionCookie writes the session credential with a lifetime matching the session.
func setSessionCookie(w http.ResponseWriter, r *http.Request, opts CookieOptions, issued sessionCookie) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    issued.Token,
		Path:     "/",
		Domain:   opts.Domain,
		HttpOnly: true,
		Secure:   opts.secure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(issued.Session.ExpiresAt.Sub(issued.Session.IssuedAt) / time.Second),
	})
}

// sessionCookie groups the token and the session it encodes.
type sessionCookie struct {
	Token   string
	Session domainauth.Session
}

// clearAuthCookies expires the session cookie and every legacy auth cookie.
// It mirrors key attributes (Secure, Path, Domain, SameSite) used when setting cookies
// to maximize compatibility across browsers during deletion.
func clearAuthCookies(w http.ResponseWriter, r *http.Request, opts CookieOptions) {
	for _, name := range append([]string{SessionCookieName}, legacyAuthCookies...) {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   opts.Domain,
			HttpOnly: true,
			Secure:   opts.secure(r),
			MaxAge:   -1,
			Expires:  time.Unix(0, 0).UTC(),
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// credentialFromRequest returns the session credential from the session cookie,
// falling back to an Authorization: Bearer header for non-browser clients.
func credentialFromRequest(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(authz) > len("Bearer ") && strings.EqualFold(authz[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(authz[len("Bearer "):])
	}
	return ""
}
