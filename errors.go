package sapo

import (
	"fmt"
	"net/http"
	"strconv"
)

const defaultErrorMessage = "An unknown error occurred"

// APIError is the generic failure returned by the Sapo API. More specific
// failures (authentication, not-found, validation, rate-limit) embed it, so
// errors.As against *APIError matches every classified failure.
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
	Errors    map[string]any
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("sapo: api error (status %d, code %s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("sapo: api error (status %d): %s", e.Status, e.Message)
}

// AuthenticationError is returned for 401 responses and for failures in the
// OAuth flow (bad callback, bad signature, failed token exchange).
type AuthenticationError struct {
	APIError
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("sapo: authentication error (%s): %s", e.Code, e.Message)
}

func (e *AuthenticationError) Unwrap() error { return &e.APIError }

// Codes carried by AuthenticationError for client-side OAuth failures.
const (
	CodeInvalidCallbackParams = "INVALID_CALLBACK_PARAMS"
	CodeInvalidHMAC           = "INVALID_HMAC"
	CodeTokenExchangeFailed   = "TOKEN_EXCHANGE_FAILED"
)

// NotFoundError is returned for 404 responses.
type NotFoundError struct {
	APIError
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("sapo: not found: %s", e.Message)
}

func (e *NotFoundError) Unwrap() error { return &e.APIError }

// ValidationError is returned for 422 responses. Fields holds the per-field
// detail from the response body's errors object.
type ValidationError struct {
	APIError
	Fields map[string]any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("sapo: validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error { return &e.APIError }

// RateLimitError is returned for 429 responses, and synthesized locally by
// the rate limiter before any request is sent. RetryAfter is in seconds; it
// is zero when the server sent no usable retry-after header.
type RateLimitError struct {
	APIError
	RetryAfter int
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("sapo: rate limited: %s (retry after %ds)", e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("sapo: rate limited: %s", e.Message)
}

func (e *RateLimitError) Unwrap() error { return &e.APIError }

// NetworkError is returned when no response exists to classify: connection
// failures, TLS errors, and deadline expiry. It is never produced from a
// received HTTP response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("sapo: network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// errorBody is the error envelope the API sends on non-2xx responses.
type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Errors  map[string]any `json:"errors"`
}

// classify maps a non-2xx response to the typed failure for its status.
// Total: every status maps to exactly one error kind.
func classify(status int, body errorBody, header http.Header) error {
	msg := body.Message
	if msg == "" {
		msg = defaultErrorMessage
	}
	requestID := header.Get("X-Request-Id")

	switch status {
	case http.StatusUnauthorized:
		return &AuthenticationError{APIError{
			Status:    status,
			Code:      body.Code,
			Message:   msg,
			RequestID: requestID,
		}}
	case http.StatusNotFound:
		return &NotFoundError{APIError{
			Status:    status,
			Code:      "NOT_FOUND",
			Message:   msg,
			RequestID: requestID,
		}}
	case http.StatusUnprocessableEntity:
		return &ValidationError{
			APIError: APIError{
				Status:    status,
				Code:      "VALIDATION_ERROR",
				Message:   msg,
				RequestID: requestID,
			},
			Fields: body.Errors,
		}
	case http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(header.Get("Retry-After"))
		return &RateLimitError{
			APIError: APIError{
				Status:    status,
				Code:      "RATE_LIMIT_EXCEEDED",
				Message:   msg,
				RequestID: requestID,
			},
			RetryAfter: retryAfter,
		}
	default:
		return &APIError{
			Status:    status,
			Code:      body.Code,
			Message:   msg,
			RequestID: requestID,
			Errors:    body.Errors,
		}
	}
}

func authError(code, message string) *AuthenticationError {
	return &AuthenticationError{APIError{
		Status:  http.StatusUnauthorized,
		Code:    code,
		Message: message,
	}}
}
