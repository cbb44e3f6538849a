package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/securecookie"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestStore_RoundTrip(t *testing.T) {
	backend := NewMemoryBackend()
	store := NewStore(backend, time.Hour, testKey)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	s, err := store.Get(req, "portico.sid")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !s.IsNew || s.ID == "" {
		t.Fatalf("expected new session with an ID, got %+v", s)
	}
	s.Values["user"] = "ada"

	rec := httptest.NewRecorder()
	if err := s.Save(req, rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	if cookies[0].Value == s.ID {
		t.Error("cookie carries the raw session ID")
	}
	if !cookies[0].Secure || !cookies[0].HttpOnly {
		t.Errorf("cookie flags: secure=%v httpOnly=%v", cookies[0].Secure, cookies[0].HttpOnly)
	}
	if backend.Len() != 1 {
		t.Errorf("backend has %d records, want 1", backend.Len())
	}

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	loaded, err := store.Get(next, "portico.sid")
	if err != nil {
		t.Fatalf("Get() with cookie error = %v", err)
	}
	if loaded.IsNew {
		t.Error("session from a valid cookie reported as new")
	}
	if loaded.ID != s.ID {
		t.Errorf("ID = %q, want %q", loaded.ID, s.ID)
	}
	if loaded.Values["user"] != "ada" {
		t.Errorf("Values[user] = %v", loaded.Values["user"])
	}
}

func TestStore_ForgedCookieStartsFreshSession(t *testing.T) {
	store := NewStore(NewMemoryBackend(), time.Hour, testKey)

	forger := securecookie.New([]byte("another-key-another-key-another!"), nil)
	value, err := forger.Encode("portico.sid", "attacker-chosen-id")
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "portico.sid", Value: value})

	s, err := store.New(req, "portico.sid")
	if err == nil {
		t.Error("expected decode error for forged cookie")
	}
	if !s.IsNew || s.ID == "attacker-chosen-id" {
		t.Errorf("forged cookie adopted: %+v", s)
	}
}

func TestStore_UnknownSessionIDIsNotAdopted(t *testing.T) {
	store := NewStore(NewMemoryBackend(), time.Hour, testKey)

	value, err := securecookie.EncodeMulti("portico.sid", "never-saved", store.Codecs...)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "portico.sid", Value: value})

	s, err := store.New(req, "portico.sid")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !s.IsNew || s.ID == "never-saved" {
		t.Errorf("unknown session ID adopted: %+v", s)
	}
}

func TestStore_DeleteWithNegativeMaxAge(t *testing.T) {
	backend := NewMemoryBackend()
	store := NewStore(backend, time.Hour, testKey)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	s, _ := store.New(req, "sid")
	if err := s.Save(req, httptest.NewRecorder()); err != nil {
		t.Fatal(err)
	}

	s.Options.MaxAge = -1
	rec := httptest.NewRecorder()
	if err := s.Save(req, rec); err != nil {
		t.Fatalf("Save() delete error = %v", err)
	}
	if backend.Len() != 0 {
		t.Errorf("backend still has %d records", backend.Len())
	}
	if c := rec.Result().Cookies(); len(c) != 1 || c[0].MaxAge >= 0 {
		t.Errorf("expected expiring cookie, got %v", c)
	}
}
