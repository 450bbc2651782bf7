// Package auth verifies the identity behind an API request.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrMissingCredentials means the request carried no identity at all.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrInvalidCredentials means an identity was presented but rejected.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Identity is the authenticated principal of a request.
type Identity struct {
	UserID string
	Email  string
}

// Authenticator extracts and verifies the identity of a request.
type Authenticator interface {
	Authenticate(ctx context.Context, r *http.Request) (*Identity, error)
}

// BearerToken returns the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
