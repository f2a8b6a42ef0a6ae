package sessiontoken

// Package sessiontoken mints and verifies HS256 session credentials with golang-jwt.

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	domainauth "github.com/voxa-app/voxa-api/internal/domain/auth"
)

// Claims is the JWT payload of a session credential.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Signer implements ports.CredentialIssuer.
type Signer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewSigner builds a signer. The secret must be non-empty; callers enforce length policy.
func NewSigner(secret []byte, issuer string) (*Signer, error) {
	if len(secret) == 0 {
		return nil, errors.New("session secret is required")
	}
	if issuer == "" {
		issuer = "voxa"
	}
	return &Signer{secret: append([]byte(nil), secret...), issuer: issuer, now: time.Now}, nil
}

// Issue signs sess. ID, UserID and ExpiresAt are required.
func (s *Signer) Issue(sess domainauth.Session) (string, error) {
	if sess.ID == "" || sess.UserID == "" {
		return "", errors.New("session id and user id are required")
	}
	if sess.ExpiresAt.IsZero() {
		return "", errors.New("session expiry is required")
	}
	issuedAt := sess.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = s.now()
	}

	claims := Claims{
		Email: sess.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   sess.UserID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session credential: %w", err)
	}
	return signed, nil
}

// Verify checks signature, issuer and expiry.
func (s *Signer) Verify(token string) (domainauth.Session, error) {
	return s.parse(token, true)
}

// Inspect checks signature and issuer but tolerates an expired credential.
func (s *Signer) Inspect(token string) (domainauth.Session, error) {
	return s.parse(token, false)
}

func (s *Signer) parse(token string, checkExpiry bool) (domainauth.Session, error) {
	if token == "" {
		return domainauth.Session{}, fmt.Errorf("empty session credential: %w", domainauth.ErrInvalidCredential)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	}
	if checkExpiry {
		opts = append(opts, jwt.WithExpirationRequired())
	} else {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("parse session credential: %w: %w", domainauth.ErrInvalidCredential, err)
	}
	// Claims validation is skipped for Inspect, so the issuer is checked by hand.
	if claims.Issuer != s.issuer {
		return domainauth.Session{}, fmt.Errorf("session credential issuer %q: %w", claims.Issuer, domainauth.ErrInvalidCredential)
	}
	if claims.ID == "" || claims.Subject == "" {
		return domainauth.Session{}, fmt.Errorf("session credential missing jti or sub: %w", domainauth.ErrInvalidCredential)
	}

	sess := domainauth.Session{
		ID:     claims.ID,
		UserID: claims.Subject,
		Email:  claims.Email,
	}
	if claims.IssuedAt != nil {
		sess.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}
