package ai

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/smithy-go"
	arkmodel "github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"
)

// ErrorKind classifies a failed inference call.
type ErrorKind string

const (
	KindInvalidRequest ErrorKind = "invalid_request"
	KindAccessDenied   ErrorKind = "access_denied"
	KindUpstream       ErrorKind = "upstream_error"
)

// GatewayError is the only error type Invoke returns.
type GatewayError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	// upstream messages already embed the cause
	if e.Err == nil || e.Kind == KindUpstream {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// classify maps a provider error onto a GatewayError. providerName only
// affects the human-readable message.
func classify(providerName string, err error) *GatewayError {
	switch kindOf(err) {
	case KindInvalidRequest:
		return &GatewayError{
			Kind:    KindInvalidRequest,
			Message: fmt.Sprintf("Invalid message format for %s", providerName),
			Err:     err,
		}
	case KindAccessDenied:
		return &GatewayError{
			Kind:    KindAccessDenied,
			Message: fmt.Sprintf("Access denied to %s model", providerName),
			Err:     err,
		}
	default:
		return &GatewayError{
			Kind:    KindUpstream,
			Message: fmt.Sprintf("%s error: %v", providerName, err),
			Err:     err,
		}
	}
}

func kindOf(err error) ErrorKind {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ValidationException":
			return KindInvalidRequest
		case "AccessDeniedException":
			return KindAccessDenied
		}
		return KindUpstream
	}

	var arkErr *arkmodel.APIError
	if errors.As(err, &arkErr) {
		return kindOfStatus(arkErr.HTTPStatusCode)
	}

	// non-JSON error bodies, e.g. from a gateway in front of Ark
	var reqErr *arkmodel.RequestError
	if errors.As(err, &reqErr) {
		return kindOfStatus(reqErr.HTTPStatusCode)
	}
	return KindUpstream
}

func kindOfStatus(status int) ErrorKind {
	switch status {
	case http.StatusBadRequest:
		return KindInvalidRequest
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAccessDenied
	default:
		return KindUpstream
	}
}
