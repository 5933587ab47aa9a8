package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMiddlewareIssuesVisitorCookie(t *testing.T) {
	t.Parallel()

	var gotVisitor, gotSession string
	h := Middleware(true)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotVisitor = VisitorIDFromContext(r.Context())
		gotSession = SessionIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.Header.Set(SessionHeaderName, "tab-42")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if !isValidVisitorID(gotVisitor) {
		t.Fatalf("invalid visitor id %q", gotVisitor)
	}
	if gotSession != "tab-42" {
		t.Fatalf("session id = %q", gotSession)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != VisitorCookieName || cookies[0].Value != gotVisitor {
		t.Fatalf("unexpected cookies %+v", cookies)
	}
	if cookies[0].Secure {
		t.Fatal("dev cookies must not be Secure")
	}
}

func TestMiddlewareReusesValidCookie(t *testing.T) {
	t.Parallel()

	const existing = "anon_0123456789abcdef0123456789abcdef"
	var gotVisitor string
	h := Middleware(false)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotVisitor = VisitorIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookieName, Value: existing})
	h.ServeHTTP(httptest.NewRecorder(), req)

	if gotVisitor != existing {
		t.Fatalf("expected cookie reuse, got %q", gotVisitor)
	}
}

func TestMiddlewareReplacesForgedCookie(t *testing.T) {
	t.Parallel()

	var gotVisitor string
	h := Middleware(false)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotVisitor = VisitorIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookieName, Value: "../../admin"})
	h.ServeHTTP(httptest.NewRecorder(), req)

	if gotVisitor == "../../admin" || !isValidVisitorID(gotVisitor) {
		t.Fatalf("forged cookie accepted: %q", gotVisitor)
	}
}

func TestSanitizeSessionID(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":            DefaultSessionIDValue,
		"  tab_1  ":   "tab_1",
		"has space":   DefaultSessionIDValue,
		"a:b":         DefaultSessionIDValue,
		"../../etc":   DefaultSessionIDValue,
		"tab.2-final": "tab.2-final",
	}
	for in, want := range tests {
		if got := sanitizeSessionID(in); got != want {
			t.Errorf("sanitizeSessionID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSessionIDFromQuery(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/ws/chat?session_id=tab-9", nil)
	if got := sessionIDFromRequest(req); got != "tab-9" {
		t.Fatalf("sessionIDFromRequest = %q", got)
	}
}
