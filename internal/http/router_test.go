package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
)

func TestRouter_JSONErrorHandlers(t *testing.T) {
	tests := []struct {
		name         string
		method       string
		path         string
		wantStatus   int
		wantContains string
	}{
		{
			name:         "unknown route",
			method:       http.MethodGet,
			path:         "/nope",
			wantStatus:   http.StatusNotFound,
			wantContains: "Endpoint not found",
		},
		{
			name:         "wrong method on chat",
			method:       http.MethodGet,
			path:         "/api/chat",
			wantStatus:   http.StatusMethodNotAllowed,
			wantContains: "Method not allowed",
		},
		{
			name:         "wrong method on health",
			method:       http.MethodPost,
			path:         "/health",
			wantStatus:   http.StatusMethodNotAllowed,
			wantContains: "Method not allowed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			handler := NewHandlers(NewMockLLMProvider(ctrl), NewMockSessionStore(ctrl), NewMockRateLimiter(ctrl))
			router := NewRouter(handler, []string{"*"})

			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("%s %s status = %d, want %d", tt.method, tt.path, w.Code, tt.wantStatus)
			}
			if !bytes.Contains(w.Body.Bytes(), []byte(tt.wantContains)) {
				t.Errorf("%s %s body = %s, want containing %q", tt.method, tt.path, w.Body.String(), tt.wantContains)
			}

			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("%s %s Content-Type = %q, want application/json", tt.method, tt.path, ct)
			}
		})
	}
}
