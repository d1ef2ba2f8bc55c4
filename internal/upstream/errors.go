// file: internal/upstream/errors.go
// version: 1.0.0
// guid: 69a64dc7-1463-4596-a466-43b31b22c846

package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
)

// Error taxonomy shared by every provider client. Client boundaries turn these
// into data (empty/stale results plus a message) instead of returning them.
var (
	ErrTransport      = errors.New("transport error")
	ErrTimeout        = errors.New("timed out")
	ErrPermission     = errors.New("permission denied")
	ErrParse          = errors.New("malformed payload")
	ErrCanceled       = errors.New("request canceled")
	ErrContentBlocked = errors.New("content blocked by bot wall")
)

// StatusError reports a non-2xx reply from a provider.
type StatusError struct {
	Source string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Source, e.Code)
}

// Unwrap makes every StatusError match ErrTransport.
func (e *StatusError) Unwrap() error { return ErrTransport }

// Classify maps an arbitrary error onto the taxonomy. Errors that already
// belong to it are returned untouched.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{ErrCanceled, ErrTimeout, ErrPermission, ErrParse, ErrContentBlocked, ErrTransport} {
		if errors.Is(err, known) {
			return err
		}
	}

	switch {
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %w", ErrCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return fmt.Errorf("%w: %w", ErrParse, err)
	}

	return fmt.Errorf("%w: %w", ErrTransport, err)
}

// IsCanceled reports whether err stems from a superseded or aborted request.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}

// Describe returns a short human-readable message for display next to
// already-rendered content. Cancellations have no message.
func Describe(err error) string {
	err = Classify(err)
	var statusErr *StatusError
	switch {
	case err == nil, IsCanceled(err):
		return ""
	case errors.Is(err, ErrTimeout):
		return "The request timed out"
	case errors.As(err, &statusErr):
		return fmt.Sprintf("Service unavailable (%d)", statusErr.Code)
	case errors.Is(err, ErrParse):
		return "Received an unreadable response"
	case errors.Is(err, ErrPermission):
		return "Permission denied"
	case errors.Is(err, ErrContentBlocked):
		return "The source blocked automated reading"
	default:
		return "Network unavailable"
	}
}

// Outcome labels a request result for metrics.
func Outcome(err error) string {
	err = Classify(err)
	switch {
	case err == nil:
		return "ok"
	case IsCanceled(err):
		return "canceled"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrParse):
		return "parse_error"
	default:
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return "http_error"
		}
		return "transport_error"
	}
}
