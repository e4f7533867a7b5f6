// Package auth validates the bearer tokens spectators present when they
// attach to a match feed. Keys come from a JWKS endpoint; the dealer never
// holds signing material itself.
package auth

import (
	"fmt"
	"strings"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// Validator checks spectator tokens against a remote JWKS. Build one per
// process; the key set refreshes itself in the background.
type Validator struct {
	jwks    keyfunc.Keyfunc
	options []jwt.ParserOption
}

// NewValidator fetches the key set from jwksURL. The issuer and any signing
// methods, when non-empty, are enforced on every token.
func NewValidator(jwksURL, issuer string, methods []string) (*Validator, error) {
	jwks, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("loading JWKS from %s: %w", jwksURL, err)
	}
	v := &Validator{jwks: jwks}
	if issuer != "" {
		v.options = append(v.options, jwt.WithIssuer(issuer))
	}
	if len(methods) > 0 {
		v.options = append(v.options, jwt.WithValidMethods(methods))
	}
	return v, nil
}

// Validate parses and verifies one token and returns its claims.
func (v *Validator) Validate(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, v.jwks.Keyfunc, v.options...)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// SubjectFromClaims returns the token's subject ("sub" or "id" claim), or
// the empty string when neither is present.
func SubjectFromClaims(claims jwt.MapClaims) string {
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub
	}
	if id, ok := claims["id"].(string); ok && id != "" {
		return id
	}
	return ""
}

// BearerToken extracts the token from an Authorization header value, or
// returns the fallback (typically a query parameter) when the header is
// absent.
func BearerToken(header, fallback string) string {
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return fallback
}
