package apiclient

import (
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// errorResponse matches the catalog API's error envelope.
type errorResponse struct {
	Error struct {
		Code       string `json:"code"`
		Message    string `json:"message"`
		StatusCode int    `json:"status_code"`
	} `json:"error"`
}

// NetworkError wraps a transport level failure (connection refused, timeout).
type NetworkError struct {
	cause error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("apiclient: network error: %v", e.cause)
}

func (e *NetworkError) Unwrap() error { return e.cause }

// NotFoundError means the chapter or audiobook no longer exists server side.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("apiclient: not found: %s", e.Message)
}

// ValidationError means the server rejected the payload, typically a bad
// chapter number or a malformed id.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("apiclient: validation failed: %s", e.Message)
}

// IsNetworkError reports whether err is a transport failure.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidationError reports whether err is a 400/422 rejection.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func classifyError(resp *resty.Response) error {
	msg := ""
	if er, ok := resp.Error().(*errorResponse); ok && er != nil {
		msg = er.Error.Message
	}
	if msg == "" {
		msg = resp.Status()
	}

	switch resp.StatusCode() {
	case http.StatusNotFound:
		return &NotFoundError{Message: msg}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &ValidationError{Message: msg}
	default:
		return errors.Errorf("apiclient: unexpected status %d: %s", resp.StatusCode(), msg)
	}
}
