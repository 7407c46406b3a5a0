package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/exam-service/internal/repositories"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidationFailed   = errors.New("validation failed")
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("operation not permitted for role")
	ErrInactiveAccount    = errors.New("account is not verified")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRoleMismatch       = errors.New("account role does not match")
	ErrVerificationFailed = errors.New("verification link is invalid or has expired")
)

// FormError carries a message safe to show next to the submitted form.
// Kind is one of the sentinels above and defaults to ErrValidationFailed.
type FormError struct {
	Field   string
	Message string
	Kind    error
}

func (e *FormError) Error() string {
	return e.Message
}

func (e *FormError) Unwrap() error {
	if e.Kind == nil {
		return ErrValidationFailed
	}
	return e.Kind
}

func formError(field, message string) *FormError {
	return &FormError{Field: field, Message: message}
}

// notFound maps a repository miss onto ErrNotFound and wraps everything else.
func notFound(op string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
