package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/domain"
)

// Stable error codes returned to clients.
const (
	CodeMissingCredential  = "missing_credential"
	CodeInvalidCredential  = "invalid_credential"
	CodeInactiveCredential = "inactive_credential"
	CodeExpiredCredential  = "expired_credential"
	CodeInsufficientScope  = "insufficient_scope"
	CodeRateLimitExceeded  = "rate_limit_exceeded"
	CodeUpstreamError      = "upstream_error"
	CodeUpstreamTimeout    = "upstream_timeout"
	CodeMalformedRequestID = "malformed_request_id"
	CodeInvalidRequest     = "invalid_request"
	CodeInternalError      = "internal_error"
)

// GatewayError is the typed failure of a pipeline stage. Two GatewayErrors
// match under errors.Is when their codes match, so the sentinels below can be
// compared against decorated copies.
type GatewayError struct {
	Code    string
	Status  int
	Message string

	// Set on rate limit denials.
	Window     domain.RateWindow
	Limit      int64
	ResetAt    time.Time
	RetryAfter time.Duration

	// Retryable is false for upstream rejections the client must fix.
	Retryable bool

	cause error
}

func (e *GatewayError) Error() string {
	if e.cause != nil {
		return e.Code + ": " + e.Message + ": " + e.cause.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *GatewayError) Unwrap() error { return e.cause }

func (e *GatewayError) Is(target error) bool {
	t, ok := target.(*GatewayError)
	return ok && t.Code == e.Code
}

var (
	ErrMissingCredential = &GatewayError{
		Code: CodeMissingCredential, Status: http.StatusUnauthorized,
		Message: "an API key is required",
	}
	ErrInvalidCredential = &GatewayError{
		Code: CodeInvalidCredential, Status: http.StatusUnauthorized,
		Message: "the API key is not recognised",
	}
	ErrInactiveCredential = &GatewayError{
		Code: CodeInactiveCredential, Status: http.StatusUnauthorized,
		Message: "the API key has been revoked",
	}
	ErrExpiredCredential = &GatewayError{
		Code: CodeExpiredCredential, Status: http.StatusUnauthorized,
		Message: "the API key has expired",
	}
	ErrInsufficientScope = &GatewayError{
		Code: CodeInsufficientScope, Status: http.StatusForbidden,
		Message: "the API key is not allowed to run this search",
	}
	ErrRateLimitExceeded = &GatewayError{
		Code: CodeRateLimitExceeded, Status: http.StatusTooManyRequests,
		Message: "rate limit exceeded",
	}
	ErrUpstream = &GatewayError{
		Code: CodeUpstreamError, Status: http.StatusBadGateway,
		Message: "the search provider failed", Retryable: true,
	}
	ErrUpstreamTimeout = &GatewayError{
		Code: CodeUpstreamTimeout, Status: http.StatusGatewayTimeout,
		Message: "the search provider did not answer in time", Retryable: true,
	}
	ErrMalformedRequestID = &GatewayError{
		Code: CodeMalformedRequestID, Status: http.StatusBadRequest,
		Message: "request_id must be a UUID or a prefixed token such as req_abc12345",
	}
	ErrInvalidRequest = &GatewayError{
		Code: CodeInvalidRequest, Status: http.StatusBadRequest,
		Message: "the request is invalid",
	}
	ErrInternal = &GatewayError{
		Code: CodeInternalError, Status: http.StatusInternalServerError,
		Message: "internal error", Retryable: true,
	}
)

func withCause(base *GatewayError, cause error) *GatewayError {
	e := *base
	e.cause = cause
	return &e
}

func invalidRequest(msg string) *GatewayError {
	e := *ErrInvalidRequest
	e.Message = msg
	return &e
}

func rateLimitExceeded(u WindowUsage, now time.Time) *GatewayError {
	e := *ErrRateLimitExceeded
	e.Message = fmt.Sprintf("%s limit of %d requests exceeded", u.Window, u.Limit)
	e.Window = u.Window
	e.Limit = u.Limit
	e.ResetAt = u.ResetAt
	e.RetryAfter = u.ResetAt.Sub(now)
	return &e
}

// retryable is implemented by executor errors that know whether the client
// may try again.
type retryable interface {
	Retryable() bool
}

// upstreamFailure classifies an executor error. Deadline errors become
// UpstreamTimeout; explicit non-retryable rejections map to 400.
func upstreamFailure(err error) *GatewayError {
	if errors.Is(err, context.DeadlineExceeded) {
		return withCause(ErrUpstreamTimeout, err)
	}
	e := withCause(ErrUpstream, err)
	var r retryable
	if errors.As(err, &r) && !r.Retryable() {
		e.Status = http.StatusBadRequest
		e.Retryable = false
		e.Message = "the search provider rejected the request"
	}
	return e
}

// AsGatewayError returns err as a *GatewayError, wrapping anything else as
// an internal error.
func AsGatewayError(err error) *GatewayError {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge
	}
	return withCause(ErrInternal, err)
}
