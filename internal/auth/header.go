package auth

import (
	"context"
	"net/http"
	"strings"
)

// UserIDHeader carries the caller's user id in header mode.
const UserIDHeader = "X-User-Id"

// HeaderAuthenticator trusts the X-User-Id header. It is meant for local
// development and tests only; configuration refuses it in production.
type HeaderAuthenticator struct{}

// NewHeaderAuthenticator creates a HeaderAuthenticator.
func NewHeaderAuthenticator() *HeaderAuthenticator {
	return &HeaderAuthenticator{}
}

// Authenticate reads the user id header of r.
func (HeaderAuthenticator) Authenticate(_ context.Context, r *http.Request) (*Identity, error) {
	userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
	if userID == "" {
		return nil, ErrMissingCredentials
	}
	return &Identity{
		UserID: userID,
		Email:  strings.TrimSpace(r.Header.Get("X-User-Email")),
	}, nil
}
