package oidc

import (
	"fmt"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// ClaimMapper extracts profile fields from decoded ID-token claims with JMESPath,
// so providers with non-standard claim shapes only need configuration.
type ClaimMapper struct {
	nameExpr  string
	emailExpr string
}

// NewClaimMapper validates both expressions up front.
func NewClaimMapper(nameExpr, emailExpr string) (*ClaimMapper, error) {
	m := &ClaimMapper{
		nameExpr:  fallback(nameExpr, "name"),
		emailExpr: fallback(emailExpr, "email"),
	}
	for _, expr := range []string{m.nameExpr, m.emailExpr} {
		if _, err := jmespath.Compile(expr); err != nil {
			return nil, fmt.Errorf("compile claim expression %q: %w", expr, err)
		}
	}
	return m, nil
}

// Name returns the display name, or "" when the expression yields no string.
func (m *ClaimMapper) Name(claims map[string]any) string {
	return searchString(m.nameExpr, claims)
}

// Email returns the email address, or "" when the expression yields no string.
func (m *ClaimMapper) Email(claims map[string]any) string {
	return strings.ToLower(searchString(m.emailExpr, claims))
}

func searchString(expr string, data map[string]any) string {
	v, err := jmespath.Search(expr, data)
	if err != nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
