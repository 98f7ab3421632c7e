package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorKind classifies completion failures
type ErrorKind string

const (
	KindAuthentication     ErrorKind = "authentication"
	KindRateLimit          ErrorKind = "rate_limit"
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindInvalidRequest     ErrorKind = "invalid_request"
	KindUnknown            ErrorKind = "unknown"
)

// GatewayError is an upstream completion failure. Every kind is terminal for the request.
type GatewayError struct {
	Kind       ErrorKind
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *GatewayError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels, so errors.Is(err, ErrRateLimit) works on any rate-limit failure
func (e *GatewayError) Is(target error) bool {
	t, ok := target.(*GatewayError)
	if !ok {
		return false
	}
	return t.Provider == "" && t.StatusCode == 0 && t.Message == "" && t.Kind == e.Kind
}

// Kind sentinels for errors.Is
var (
	ErrAuthentication     = &GatewayError{Kind: KindAuthentication}
	ErrRateLimit          = &GatewayError{Kind: KindRateLimit}
	ErrServiceUnavailable = &GatewayError{Kind: KindServiceUnavailable}
	ErrInvalidRequest     = &GatewayError{Kind: KindInvalidRequest}
	ErrUnknown            = &GatewayError{Kind: KindUnknown}
)

// KindForStatus maps an upstream HTTP status to an error kind
func KindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return KindAuthentication
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status == http.StatusRequestTimeout, status >= http.StatusInternalServerError:
		return KindServiceUnavailable
	case status == http.StatusBadRequest, status == http.StatusNotFound,
		status == http.StatusRequestEntityTooLarge, status == http.StatusUnprocessableEntity:
		return KindInvalidRequest
	default:
		return KindUnknown
	}
}

// newStatusError builds a gateway error from an upstream status and vendor message
func newStatusError(provider string, status int, message string, err error) *GatewayError {
	if message == "" {
		message = http.StatusText(status)
	}
	return &GatewayError{
		Kind:       KindForStatus(status),
		Provider:   provider,
		StatusCode: status,
		Message:    truncate(message, maxErrorMessageChars),
		Err:        err,
	}
}

// classifyTransport handles failures that carry no upstream status
func classifyTransport(provider string, err error) *GatewayError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return &GatewayError{Kind: KindServiceUnavailable, Provider: provider, Message: "request timed out", Err: err}
	case errors.Is(err, context.Canceled):
		return &GatewayError{Kind: KindUnknown, Provider: provider, Message: "request canceled", Err: err}
	default:
		return &GatewayError{Kind: KindUnknown, Provider: provider, Message: "request failed", Err: err}
	}
}

// missingKeyError is returned at factory time when a provider has no credentials
func missingKeyError(provider, envVar string) *GatewayError {
	return &GatewayError{
		Kind:     KindAuthentication,
		Provider: provider,
		Message:  envVar + " is not configured",
	}
}

// emptyCompletionError is returned when the provider answered without any text
func emptyCompletionError(provider string) *GatewayError {
	return &GatewayError{Kind: KindUnknown, Provider: provider, Message: "response did not include any output text"}
}
