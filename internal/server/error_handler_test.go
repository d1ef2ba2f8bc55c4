// file: internal/server/error_handler_test.go
// version: 2.0.0
// guid: 411a7aa5-44b2-4bb2-ac7f-44ac6d4062d7

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jdfalk/newsdeck/internal/upstream"
)

func newTestContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", target, nil)
	return c, w
}

func TestRespondWithBadRequest(t *testing.T) {
	c, w := newTestContext("/")

	RespondWithBadRequest(c, "test error")

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "test error") {
		t.Errorf("expected error message in response, got %q", w.Body.String())
	}
}

func TestRespondWithValidationError(t *testing.T) {
	c, w := newTestContext("/")

	RespondWithValidationError(c, "sort", "expected latest or trending")

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "VALIDATION_ERROR") || !strings.Contains(body, "validation error: sort") {
		t.Errorf("unexpected body %q", body)
	}
}

func TestRespondWithServiceUnavailable(t *testing.T) {
	c, w := newTestContext("/")

	RespondWithServiceUnavailable(c, "weather")

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "weather not available") {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

func TestRespondWithUpstreamError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"timeout", fmt.Errorf("synthesize: %w", upstream.ErrTimeout), http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT"},
		{"canceled", upstream.Classify(context.Canceled), 499, "CANCELED"},
		{"status", &upstream.StatusError{Code: http.StatusInternalServerError}, http.StatusBadGateway, "UPSTREAM_ERROR"},
		{"other", errors.New("boom"), http.StatusBadGateway, "UPSTREAM_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, w := newTestContext("/")
			RespondWithUpstreamError(c, tc.err)
			if w.Code != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, w.Code)
			}
			if !strings.Contains(w.Body.String(), tc.code) {
				t.Errorf("expected code %s in %q", tc.code, w.Body.String())
			}
		})
	}
}

func TestRespondWithAccepted(t *testing.T) {
	c, w := newTestContext("/")

	RespondWithAccepted(c, map[string]int{"generation": 3})

	if w.Code != http.StatusAccepted {
		t.Errorf("expected status 202, got %d", w.Code)
	}
}

func TestHandleBindError(t *testing.T) {
	c, w := newTestContext("/")
	if HandleBindError(c, nil) {
		t.Fatal("nil error should not be handled")
	}

	if !HandleBindError(c, errors.New("unexpected EOF")) {
		t.Fatal("expected error to be handled")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "BAD_REQUEST") {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

func TestParseQueryInt(t *testing.T) {
	c, _ := newTestContext("/?visible=2&limit=abc")

	if got := ParseQueryInt(c, "visible", 0); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
	if got := ParseQueryInt(c, "limit", 20); got != 20 {
		t.Errorf("expected default 20 for invalid value, got %d", got)
	}
	if got := ParseQueryInt(c, "missing", 7); got != 7 {
		t.Errorf("expected default 7, got %d", got)
	}
}
