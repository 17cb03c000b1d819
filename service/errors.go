package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrForbidden         = errors.New("insufficient permissions")
	ErrInvalidInput      = errors.New("invalid input")
	ErrTenantRequired    = errors.New("select a tenant first")
	ErrInvitationExpired = errors.New("invitation expired")
	ErrStorageDisabled   = errors.New("document storage is not configured")
	ErrAIUnavailable     = errors.New("ai provider is not configured")
	ErrAIRateLimited     = errors.New("ai rate limit exceeded")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
