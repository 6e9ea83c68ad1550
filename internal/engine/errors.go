package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindTimeout     Kind = "timeout"
	KindRateLimited Kind = "rate_limited"
	KindAuthFailure Kind = "auth_failure"
	KindUnsupported Kind = "unsupported"
	KindUnknown     Kind = "unknown"
)

// Error is the failure type surfaced by every engine variant.
type Error struct {
	Engine string
	Kind   Kind
	Err    error
}

func NewError(engine string, kind Kind, err error) *Error {
	return &Error{Engine: engine, Kind: kind, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s engine: %s: %v", e.Engine, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s engine: %s", e.Engine, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable integrates with pkg/retry: auth failures and unsupported
// languages never succeed on retry.
func (e *Error) IsRetryable() bool {
	switch e.Kind {
	case KindAuthFailure, KindUnsupported:
		return false
	}
	return true
}

func (e *Error) IsFatal() bool {
	return !e.IsRetryable()
}

// KindOf extracts the error kind, mapping context deadlines to Timeout.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var engErr *Error
	if errors.As(err, &engErr) {
		return engErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUnknown
}

func kindFromStatus(code int) Kind {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindAuthFailure
	case code == http.StatusTooManyRequests:
		return KindRateLimited
	case code == http.StatusBadRequest || code == http.StatusNotFound:
		return KindUnsupported
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return KindTimeout
	default:
		return KindUnknown
	}
}
