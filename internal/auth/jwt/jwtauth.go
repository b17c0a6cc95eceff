package jwt

import (
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
)

// VerifyToken verifies the token and returns its subject (username) and role
// claims. The role comes from the signed token, never from the request body.
func VerifyToken(jwtAuth *jwtauth.JWTAuth, token string) (string, string, error) {
	t, err := jwtauth.VerifyToken(jwtAuth, token)
	if err != nil {
		return "", "", err
	}
	role := ""
	if v, ok := t.Get("role"); ok {
		role, ok = v.(string)
		if !ok {
			return "", "", fmt.Errorf("role claim is not a string")
		}
	}
	return t.Subject(), role, nil
}

// NewTokenWithRole creates a JWT carrying the username as subject and the
// back office role as a custom claim.
func NewTokenWithRole(jwtAuth *jwtauth.JWTAuth, ttl time.Duration, subject, role string) (string, error) {
	claims := map[string]interface{}{
		"exp": time.Now().Add(ttl).Unix(),
	}
	if subject != "" {
		claims["sub"] = subject
	}
	if role != "" {
		claims["role"] = role
	}
	_, ts, err := jwtAuth.Encode(claims)
	if err != nil {
		return ts, err
	}
	return ts, nil
}
