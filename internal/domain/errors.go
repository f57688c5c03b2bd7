package domain

import "errors"

// Domain errors
var (
	ErrRemoteUnavailable   = errors.New("remote store unavailable")
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrCatalogItemNotFound = errors.New("catalog item not found")
	ErrInvalidKind         = errors.New("invalid annotation kind")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidToken        = errors.New("invalid token")
	ErrAnnotationsLoading  = errors.New("annotations still loading")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}
