package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/sessions"
)

func TestSessions_SavesNewSessionBeforeHeader(t *testing.T) {
	store := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))

	handler := Sessions(store, "portico.sid", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := GetSession(r.Context())
		if s == nil {
			t.Error("session missing from context")
			return
		}
		s.Values["visits"] = 1
		_, _ = w.Write([]byte("hello"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "portico.sid" {
		t.Fatalf("expected session cookie, got %v", cookies)
	}

	// The cookie must round-trip into an existing session.
	var visits any
	next := Sessions(store, "portico.sid", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := GetSession(r.Context())
		if s.IsNew {
			t.Error("session from cookie reported as new")
		}
		visits = s.Values["visits"]
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	second := httptest.NewRecorder()
	next.ServeHTTP(second, req)

	if visits != 1 {
		t.Errorf("visits = %v, want 1", visits)
	}
	if len(second.Result().Cookies()) != 0 {
		t.Error("unmodified existing session was re-saved")
	}
}

func TestSessions_SavesWhenHandlerWritesNothing(t *testing.T) {
	store := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	handler := Sessions(store, "sid", nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if len(rec.Result().Cookies()) != 1 {
		t.Errorf("expected a session cookie, got %v", rec.Result().Cookies())
	}
}
