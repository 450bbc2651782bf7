package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error taxonomy shared by every service. Handlers map these onto HTTP
// statuses with errors.Is; anything else is an internal error.
var (
	ErrAuthenticationMissing = errors.New("authentication required")
	ErrAuthorizationDenied   = errors.New("not allowed")
	ErrRecordNotFound        = errors.New("record not found")
	ErrUpstreamService       = errors.New("upstream service error")
	ErrValidation            = errors.New("validation failed")
)

// Lookups that come back empty wrap ErrRecordNotFound.
var (
	ErrEmployeeNotFound     = fmt.Errorf("employee: %w", ErrRecordNotFound)
	ErrOrganizationNotFound = fmt.Errorf("organization: %w", ErrRecordNotFound)
	ErrProjectNotFound      = fmt.Errorf("project: %w", ErrRecordNotFound)
	ErrPromotionNotFound    = fmt.Errorf("promotion: %w", ErrRecordNotFound)
)

// upstream wraps a repository or remote-service failure.
func upstream(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUpstreamService, op, err)
}

// invalid builds a validation error with a client-facing reason.
func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// denied builds an authorization error naming the refused action.
func denied(action string) error {
	return fmt.Errorf("%w: %s", ErrAuthorizationDenied, action)
}

// validateID rejects ids that cannot name a row.
func validateID(kind, id string) error {
	if id == "" {
		return invalid("%s id is required", kind)
	}
	if _, err := uuid.Parse(id); err != nil {
		return invalid("%s id %q is not a valid id", kind, id)
	}
	return nil
}
