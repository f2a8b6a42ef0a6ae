package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/voxa-app/voxa-api/internal/domain/auth"
	"github.com/voxa-app/voxa-api/internal/service"
)

// SessionTransportHeader lets non-browser clients ask for the credential in the
// response body instead of a cookie.
const SessionTransportHeader = "X-Session-Transport"

// SessionManager defines the session operations used by the HTTP layer.
type SessionManager interface {
	PrincipalResolver
	CreateSession(ctx context.Context, idToken string) (*service.IssuedSession, error)
	ClearSession(ctx context.Context, credential string) error
}

// AccountCreator provisions new profiles.
type AccountCreator interface {
	SignUp(ctx context.Context, in service.SignUpInput) (domainauth.Profile, error)
}

// AuthHandlers provides HTTP handlers for sign-up, sign-in, logout and status.
type AuthHandlers struct {
	Sessions SessionManager
	Accounts AccountCreator
	Cookies  CookieOptions
	Logger   *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type signUpRequest struct {
	IDToken    string         `json:"idToken"`
	Name       string         `json:"name"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// SignUp creates the caller's profile on the free plan.
// POST /api/auth/sign-up.
func (h *AuthHandlers) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.IDToken) == "" {
		writeFailure(w, http.StatusBadRequest, "idToken is required")
		return
	}

	_, err := h.Accounts.SignUp(r.Context(), service.SignUpInput{
		IDToken:    req.IDToken,
		Name:       req.Name,
		Attributes: req.Attributes,
	})
	switch {
	case err == nil:
		writeResult(w, http.StatusCreated, Result{Success: true, Message: "Account created successfully. Please sign in."})
	case errors.Is(err, domainauth.ErrProfileExists):
		writeFailure(w, http.StatusConflict, "User already exists. Please sign in.")
	case errors.Is(err, domainauth.ErrInvalidCredential):
		writeFailure(w, http.StatusUnauthorized, "Invalid or expired ID token")
	default:
		h.logger().ErrorContext(r.Context(), "sign-up failed", "error", err)
		writeFailure(w, http.StatusInternalServerError, "Failed to create an account")
	}
}

type signInRequest struct {
	IDToken string `json:"idToken"`
}

type bearerSessionResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SignIn exchanges an ID token for a session credential.
// POST /api/auth/sign-in.
func (h *AuthHandlers) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.IDToken) == "" {
		writeFailure(w, http.StatusBadRequest, "idToken is required")
		return
	}

	issued, err := h.Sessions.CreateSession(r.Context(), req.IDToken)
	switch {
	case err == nil:
	case errors.Is(err, domainauth.ErrProfileNotFound):
		writeFailure(w, http.StatusNotFound, "User does not exist. Create an account.")
		return
	case errors.Is(err, domainauth.ErrInvalidCredential):
		writeFailure(w, http.StatusUnauthorized, "Invalid or expired ID token")
		return
	default:
		h.logger().ErrorContext(r.Context(), "sign-in failed", "error", err)
		writeFailure(w, http.StatusInternalServerError, "Failed to log into account. Please try again.")
		return
	}

	const message = "Signed in successfully"
	if strings.EqualFold(r.Header.Get(SessionTransportHeader), "bearer") {
		WriteJSON(w, http.StatusOK, bearerSessionResponse{
			Success:   true,
			Message:   message,
			Token:     issued.Token,
			ExpiresAt: issued.Session.ExpiresAt,
		})
		return
	}

	setSessionCookie(w, r, h.Cookies, sessionCookie{Token: issued.Token, Session: issued.Session})
	writeResult(w, http.StatusOK, Result{Success: true, Message: message})
}

// Logout revokes the current session and clears every auth cookie.
// The cookies are cleared even when revocation fails.
// POST /api/auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	err := h.Sessions.ClearSession(r.Context(), credentialFromRequest(r))
	clearAuthCookies(w, r, h.Cookies)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "logout failed", "error", err)
		writeFailure(w, http.StatusInternalServerError, "Failed to clear cookies")
		return
	}
	writeResult(w, http.StatusOK, Result{Success: true, Message: "Cookies cleared successfully"})
}

type meResponse struct {
	Authenticated bool                           `json:"authenticated"`
	User          *domainauth.Profile            `json:"user,omitempty"`
	Capabilities  map[domainauth.Capability]bool `json:"capabilities"`
}

// Me returns the current principal and its capabilities.
// GET /api/auth/me.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())
	resp := meResponse{
		Authenticated: principal.IsAuthenticated(),
		Capabilities:  service.Capabilities(principal),
	}
	if profile, ok := principal.Profile(); ok {
		resp.User = &profile
	}
	WriteJSON(w, http.StatusOK, resp)
}
