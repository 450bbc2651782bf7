package auth

import (
	"context"
	"fmt"
	"net/http"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// IDTokenVerifier is the part of the Firebase auth client used here.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseAuthenticator verifies Firebase ID tokens sent as bearer tokens.
type FirebaseAuthenticator struct {
	verifier IDTokenVerifier
}

// NewFirebaseAuthenticator wraps a Firebase token verifier.
func NewFirebaseAuthenticator(verifier IDTokenVerifier) *FirebaseAuthenticator {
	return &FirebaseAuthenticator{verifier: verifier}
}

// InitializeFirebase creates a Firebase auth client from a service account file.
func InitializeFirebase(ctx context.Context, credentialsPath string) (*fbauth.Client, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required")
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get firebase auth client: %w", err)
	}
	return client, nil
}

// Authenticate verifies the bearer token of r.
func (a *FirebaseAuthenticator) Authenticate(ctx context.Context, r *http.Request) (*Identity, error) {
	token := BearerToken(r)
	if token == "" {
		return nil, ErrMissingCredentials
	}

	decoded, err := a.verifier.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}

	identity := &Identity{UserID: decoded.UID}
	if email, ok := decoded.Claims["email"].(string); ok {
		identity.Email = email
	}
	return identity, nil
}
