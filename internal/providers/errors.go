package providers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Kind classifies a provider error independently of which provider produced
// it, so callers apply one retry and abort policy across both sides of a
// migration.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthenticated
	KindRateLimited
	KindForbidden
	KindNotFound
	KindConflict
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindRateLimited:
		return "rate_limited"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// Error is the classified error returned by every provider client call.
type Error struct {
	Kind       Kind
	Provider   Provider
	RetryAfter time.Duration // optional hint, set for rate limits when the provider supplies one
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf constructs a classified error with a formatted message.
func Errorf(p Provider, kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Provider: p, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the Kind from err, or KindUnknown when err was never
// classified.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

// Fatal reports whether err should abort the remaining work of a migration
// job. Item-local kinds (NotFound, Conflict, Transient) are not fatal.
func Fatal(err error) bool {
	switch KindOf(err) {
	case KindNotFound, KindConflict, KindTransient:
		return false
	default:
		return true
	}
}

// Retryable reports whether err is worth retrying with backoff.
func Retryable(err error) bool {
	k := KindOf(err)
	return k == KindConflict || k == KindTransient
}

// RetryAfterOf returns the retry-after hint carried by err, if any.
func RetryAfterOf(err error) time.Duration {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.RetryAfter
	}
	return 0
}

// classifyStatus maps an HTTP status code to a Kind. Provider-specific
// quirks (quota errors under 403) are handled before this fallback.
func classifyStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthenticated
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status >= 500:
		return KindTransient
	default:
		return KindUnknown
	}
}

// parseRetryAfter reads a Retry-After header value in seconds.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
