package middlewares_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sugarrush/sweetshop/internal/http/middlewares"
)

func newJSONGatedRouter() *gin.Engine {
	r := gin.New()
	r.Use(middlewares.RequireJSON())

	handler := func(c *gin.Context) { c.Status(http.StatusOK) }

	r.POST("/sweets", handler)
	r.POST("/sweets/:id/purchase", handler)
	r.GET("/sweets", handler)

	return r
}

func TestRequireJSON(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		contentType    string
		wantStatusCode int
	}{
		{
			name:           "json_body_accepted",
			method:         http.MethodPost,
			path:           "/sweets",
			body:           `{"name":"Fudge"}`,
			contentType:    "application/json",
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "json_with_charset_accepted",
			method:         http.MethodPost,
			path:           "/sweets",
			body:           `{"name":"Fudge"}`,
			contentType:    "application/json; charset=utf-8",
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "wrong_content_type_refused",
			method:         http.MethodPost,
			path:           "/sweets",
			body:           `name=Fudge`,
			contentType:    "application/x-www-form-urlencoded",
			wantStatusCode: http.StatusUnsupportedMediaType,
		},
		{
			name:           "body_without_content_type_refused",
			method:         http.MethodPost,
			path:           "/sweets",
			body:           `{"name":"Fudge"}`,
			wantStatusCode: http.StatusUnsupportedMediaType,
		},
		{
			// purchase sends a bearer token and nothing else; it must not
			// be forced to fake a Content-Type for an empty body
			name:           "bodyless_post_passes",
			method:         http.MethodPost,
			path:           "/sweets/1/purchase",
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "get_untouched",
			method:         http.MethodGet,
			path:           "/sweets",
			wantStatusCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			r := newJSONGatedRouter()

			var req *http.Request

			if tt.body == "" {
				req = httptest.NewRequest(tt.method, tt.path, nil)
			} else {
				req = httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			}

			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}
