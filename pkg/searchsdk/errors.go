package searchsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ============================================================================
// Gateway Error Codes
// ============================================================================

const (
	ErrorCodeMissingCredential  = "missing_credential"
	ErrorCodeInvalidCredential  = "invalid_credential"
	ErrorCodeInactiveCredential = "inactive_credential"
	ErrorCodeExpiredCredential  = "expired_credential"
	ErrorCodeInsufficientScope  = "insufficient_scope"
	ErrorCodeRateLimitExceeded  = "rate_limit_exceeded"
	ErrorCodeUpstreamError      = "upstream_error"
	ErrorCodeUpstreamTimeout    = "upstream_timeout"
	ErrorCodeMalformedRequestID = "malformed_request_id"
	ErrorCodeInvalidRequest     = "invalid_request"
	ErrorCodeInternalError      = "internal_error"
	ErrorCodeNotFound           = "not_found"

	// Returned by the admin API for bad or missing admin tokens.
	ErrorCodeInvalidToken = "invalid_token"
)

// ============================================================================
// APIError
// ============================================================================

// APIError is a non-2xx response from the gateway.
type APIError struct {
	// StatusCode is the HTTP status code of the response
	StatusCode int `json:"-"`

	// Code is the stable error code (see the ErrorCode constants)
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`

	// RetryAfter is parsed from the Retry-After header, zero when absent
	RetryAfter time.Duration `json:"-"`

	// RateLimit is set when the request reached the gateway's rate limiter
	RateLimit *RateLimit `json:"-"`

	CorrelationID string `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Retryable reports whether sending the same request again may succeed.
// Rejections the caller has to fix (bad keys, scopes, malformed input,
// upstream 4xx) are not retryable.
func (e *APIError) Retryable() bool {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		return true
	case e.StatusCode >= 500:
		return true
	default:
		return false
	}
}

// IsRateLimited reports whether err is a rate limit denial.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == ErrorCodeRateLimitExceeded
}

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse turns a non-2xx response into an *APIError. Returns nil
// if the response indicates success.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{
		StatusCode:    resp.StatusCode,
		RateLimit:     parseRateLimit(resp.Header),
		CorrelationID: resp.Header.Get("X-Correlation-ID"),
	}
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		apiErr.RetryAfter = time.Duration(secs) * time.Second
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		apiErr.Code = errResp.Error
		apiErr.Description = errResp.ErrorDescription
		return apiErr
	}

	// Not a gateway error body, e.g. a proxy in between
	apiErr.Code = http.StatusText(resp.StatusCode)
	apiErr.Description = string(body)
	return apiErr
}

// parseRateLimit reads the X-RateLimit-* headers. Returns nil when the
// response does not carry them.
func parseRateLimit(h http.Header) *RateLimit {
	limit, err := strconv.ParseInt(h.Get("X-RateLimit-Limit"), 10, 64)
	if err != nil {
		return nil
	}
	rl := &RateLimit{
		Window: h.Get("X-RateLimit-Window"),
		Limit:  limit,
	}
	if remaining, err := strconv.ParseInt(h.Get("X-RateLimit-Remaining"), 10, 64); err == nil {
		rl.Remaining = remaining
	}
	if reset, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		rl.Reset = time.Unix(reset, 0).UTC()
	}
	return rl
}
