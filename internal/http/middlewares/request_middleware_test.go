package middlewares_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sugarrush/sweetshop/internal/http/middlewares"
)

func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.RequestID())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	// no inbound id: one gets minted

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if w.Header().Get("X-Request-Id") == "" {
		t.Errorf("expected a generated X-Request-Id header")
	}

	// inbound id is honored

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-Id", "req-abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-Id"); got != "req-abc" {
		t.Errorf("got X-Request-Id %q, want req-abc", got)
	}
}

func TestRequestLogger_WritesThroughGivenLogger(t *testing.T) {
	var buf bytes.Buffer

	log := slog.New(slog.NewJSONHandler(&buf, nil))

	r := gin.New()
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	out := buf.String()

	if !strings.Contains(out, "http_request") || !strings.Contains(out, `"route":"/ping"`) {
		t.Errorf("expected an http_request line for /ping, got %q", out)
	}

	if !strings.Contains(out, `"request_id"`) {
		t.Errorf("expected the request id on the log line, got %q", out)
	}
}
