package domain

import "fmt"

// Error types for consistent error handling across the client.

// APIError is the structured error body the backend returns on 4xx.
type APIError struct {
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Path      string `json:"path,omitempty"`
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s [%s]: %s", e.ErrorCode, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.ErrorCode, e.Message)
}

// ErrStatus wraps a non-2xx HTTP response. Body holds the decoded APIError
// when the backend sent one.
type ErrStatus struct {
	Status int
	Body   *APIError
	Raw    string
}

func (e *ErrStatus) Error() string {
	if e.Body != nil {
		return fmt.Sprintf("status %d: %s", e.Status, e.Body.Error())
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Raw)
}

func (e *ErrStatus) Unwrap() error {
	if e.Body != nil {
		return e.Body
	}
	return nil
}

// ErrUnreachable indicates the server could not be reached at all — no HTTP
// status was produced (connection refused, DNS failure, open breaker).
type ErrUnreachable struct {
	Err error
}

func (e *ErrUnreachable) Error() string {
	return fmt.Sprintf("server unreachable: %v", e.Err)
}

func (e *ErrUnreachable) Unwrap() error { return e.Err }

// ErrNotFound indicates a 404 for a specific resource.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized indicates invalid credentials or a rejected/expired token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrValidation indicates bad input rejected before it reaches the wire.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrMalformedResponse indicates the backend answered 2xx but the body was
// not usable (e.g. an auth response without a token).
type ErrMalformedResponse struct {
	Reason string
}

func (e *ErrMalformedResponse) Error() string {
	return fmt.Sprintf("malformed response: %s", e.Reason)
}
