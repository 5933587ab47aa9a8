package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
)

func TestSPAHandler(t *testing.T) {
	t.Parallel()
	h := newSPAHandler(fstest.MapFS{
		"index.html": {Data: []byte("<html>chat</html>")},
		"app.css":    {Data: []byte("body{}")},
	})

	tests := []struct {
		path     string
		status   int
		contains string
		noCache  bool
	}{
		{"/", http.StatusOK, "chat", true},
		{"/some/client/route", http.StatusOK, "chat", true},
		{"/app.css", http.StatusOK, "body{}", false},
		{"/api/missing", http.StatusNotFound, "404", false},
		{"/ws/missing", http.StatusNotFound, "404", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if !strings.Contains(w.Body.String(), tt.contains) {
				t.Errorf("body = %q, want it to contain %q", w.Body.String(), tt.contains)
			}
			if got := w.Header().Get("Cache-Control") == "no-cache"; got != tt.noCache {
				t.Errorf("no-cache = %v, want %v", got, tt.noCache)
			}
		})
	}
}

func TestEmbeddedPage(t *testing.T) {
	t.Parallel()
	w := httptest.NewRecorder()
	SPAHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "/api/chat") {
		t.Errorf("embedded page not served: %d", w.Code)
	}
}
