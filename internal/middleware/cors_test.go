package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	tests := []struct {
		name        string
		allowed     []string
		origin      string
		method      string
		wantStatus  int
		wantOrigin  string
		wantCreds   string
		wantHeaders string
	}{
		{
			name: "explicit origin gets credentials", allowed: []string{"https://a.example"},
			origin: "https://a.example", method: http.MethodGet, wantStatus: http.StatusTeapot,
			wantOrigin: "https://a.example", wantCreds: "true", wantHeaders: "Content-Type, X-Session",
		},
		{
			name: "wildcard echoes origin without credentials", allowed: []string{"*"},
			origin: "https://b.example", method: http.MethodGet, wantStatus: http.StatusTeapot,
			wantOrigin: "https://b.example", wantHeaders: "Content-Type, X-Session",
		},
		{
			name: "unknown origin gets nothing", allowed: []string{"https://a.example"},
			origin: "https://evil.example", method: http.MethodGet, wantStatus: http.StatusTeapot,
		},
		{
			name: "preflight short-circuits", allowed: []string{"*"},
			origin: "https://b.example", method: http.MethodOptions, wantStatus: http.StatusNoContent,
			wantOrigin: "https://b.example", wantHeaders: "Content-Type, X-Session",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := CORS(tt.allowed, "X-Session")(next)
			req := httptest.NewRequest(tt.method, "/api/config", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("allow-origin = %q, want %q", got, tt.wantOrigin)
			}
			if got := w.Header().Get("Access-Control-Allow-Credentials"); got != tt.wantCreds {
				t.Errorf("allow-credentials = %q, want %q", got, tt.wantCreds)
			}
			if got := w.Header().Get("Access-Control-Allow-Headers"); got != tt.wantHeaders {
				t.Errorf("allow-headers = %q, want %q", got, tt.wantHeaders)
			}
		})
	}
}
