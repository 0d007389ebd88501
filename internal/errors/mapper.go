// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// Engine-level sentinels. Transport and store failures are converted to
// these at the boundary where they occur, so callers can branch without
// inspecting wrapped causes.
var (
	// ErrNotFound signals an empty result, distinguishable from an
	// opaque failure so the radius-expansion algorithm can branch.
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated signals a missing actor identity. Never
	// retried; the caller must re-authenticate first.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrInvalidArgument signals a rejected local precondition.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnavailable signals a transport failure (network unreachable,
	// malformed response). Recoverable: distinct from "nothing found".
	ErrUnavailable = errors.New("service unavailable")
)

// InvalidArgument wraps ErrInvalidArgument with a reason.
func InvalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

// Unavailable wraps ErrUnavailable with the underlying cause.
func Unavailable(cause error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, cause)
}

// HTTPStatus maps engine errors onto HTTP status codes for the
// presentation boundary. Keeps handlers clean by centralizing mapping.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound

	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized

	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest

	case errors.Is(err, ErrUnavailable):
		return http.StatusBadGateway

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	case errors.Is(err, context.Canceled):
		return 499 // client closed request

	default:
		return http.StatusInternalServerError
	}
}
