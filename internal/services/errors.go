package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrConfiguration marks a missing or unusable required setting,
	// detected before any upstream call is attempted.
	ErrConfiguration = errors.New("configuration error")
	// ErrValidation marks malformed caller input.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a reference to an unknown entity (e.g. curator id).
	ErrNotFound = errors.New("not found")
	// ErrRateLimited marks an upstream quota/rate-limit response. It is
	// always classified separately from generic transport failures so the
	// caller can present a retryable condition.
	ErrRateLimited = errors.New("rate limited")
	// ErrUpstream marks a transport-level failure talking to an upstream
	// service (network error, timeout, non-2xx other than rate limiting).
	ErrUpstream = errors.New("upstream failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrUpstream
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// HTTPStatus maps a classified error to the status code the transport layer
// should emit. Unclassified errors map to 500.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
