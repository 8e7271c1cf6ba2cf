package errors

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
)

// MapBackendError maps transport-level errors from backend calls to
// AppError instances. It handles common patterns:
//   - context deadline → Timeout
//   - context cancellation → Canceled
//   - url.Error / net.Error (DNS failure, refused connection, client
//     timeout) → Network
//
// Backend-declined responses (envelope success=false) are mapped at the
// client layer, not here, because they need the decoded server message.
// If the error is not a recognized transport error, it is returned as-is.
func MapBackendError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{
			Code:    ErrCodeTimeout,
			Message: "The request timed out. Please try again.",
			Cause:   err,
		}
	}
	if errors.Is(err, context.Canceled) {
		return &AppError{
			Code:    ErrCodeCanceled,
			Message: "The request was canceled.",
			Cause:   err,
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		// url.Error wraps context errors when the request context fires.
		if urlErr.Timeout() || errors.Is(urlErr.Err, context.DeadlineExceeded) {
			return &AppError{
				Code:    ErrCodeTimeout,
				Message: "The request timed out. Please try again.",
				Cause:   err,
			}
		}
		return &AppError{
			Code:    ErrCodeNetwork,
			Message: "Could not reach the server. Check your connection and try again.",
			Cause:   err,
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &AppError{
				Code:    ErrCodeTimeout,
				Message: "The request timed out. Please try again.",
				Cause:   err,
			}
		}
		return &AppError{
			Code:    ErrCodeNetwork,
			Message: "Could not reach the server. Check your connection and try again.",
			Cause:   err,
		}
	}

	return err
}

// MapBackendStatus maps a non-2xx backend HTTP status (with no decodable
// envelope) to an AppError.
func MapBackendStatus(status int) *AppError {
	switch {
	case status == http.StatusNotFound:
		return NotFound("Resource not found")
	case status == http.StatusUnauthorized:
		return AuthRejected("Your session has expired. Please sign in again.")
	case status >= http.StatusInternalServerError:
		return Network("The server is having trouble. Please try again.")
	default:
		return Internalf("unexpected backend status %d", status)
	}
}
