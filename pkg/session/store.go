package session

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

// Store is a gorilla/sessions Store that keeps session values in a Backend
// and only a signed session ID in the cookie.
type Store struct {
	Codecs  []securecookie.Codec
	Options *sessions.Options

	backend Backend
	logger  *slog.Logger
	now     func() time.Time
}

// NewStore creates a Store over backend. keyPairs are securecookie hash
// and (optional) block keys, as in sessions.NewCookieStore.
func NewStore(backend Backend, maxAge time.Duration, keyPairs ...[]byte) *Store {
	s := &Store{
		Codecs: securecookie.CodecsFromPairs(keyPairs...),
		Options: &sessions.Options{
			Path:     "/",
			MaxAge:   int(maxAge.Seconds()),
			Secure:   true,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		},
		backend: backend,
		logger:  slog.Default().With("component", "session"),
		now:     time.Now,
	}
	s.MaxAge(s.Options.MaxAge)
	return s
}

// MaxAge sets the maximum age of the session cookie and of the stored
// values, in seconds.
func (s *Store) MaxAge(age int) {
	s.Options.MaxAge = age
	for _, codec := range s.Codecs {
		if sc, ok := codec.(*securecookie.SecureCookie); ok {
			sc.MaxAge(age)
		}
	}
}

// Backend returns the store's backend.
func (s *Store) Backend() Backend {
	return s.backend
}

// Get returns the named session, cached per request.
func (s *Store) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New returns the session named by the request cookie, or a fresh session
// with a new ID when the cookie is missing, forged or refers to an unknown
// or expired session. A client-chosen ID is never adopted.
func (s *Store) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.Options
	session.Options = &opts
	session.IsNew = true
	session.ID = uuid.NewString()

	cookie, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}

	var id string
	if err := securecookie.DecodeMulti(name, cookie.Value, &id, s.Codecs...); err != nil {
		return session, fmt.Errorf("decode session cookie: %w", err)
	}

	rec, err := s.backend.Load(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		return session, nil
	}
	if err != nil {
		return session, err
	}

	if err := securecookie.DecodeMulti(name, string(rec.Data), &session.Values, s.Codecs...); err != nil {
		return session, fmt.Errorf("decode session values: %w", err)
	}

	session.ID = id
	session.IsNew = false
	return session, nil
}

// Save persists the session and sets its cookie. A negative MaxAge deletes
// the session and expires the cookie.
func (s *Store) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.backend.Delete(r.Context(), session.ID); err != nil {
				return err
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = uuid.NewString()
	}

	data, err := securecookie.EncodeMulti(session.Name(), session.Values, s.Codecs...)
	if err != nil {
		return fmt.Errorf("encode session values: %w", err)
	}

	rec := &Record{
		ID:        session.ID,
		Data:      []byte(data),
		ExpiresAt: s.now().Add(time.Duration(session.Options.MaxAge) * time.Second),
	}
	if err := s.backend.Save(r.Context(), rec); err != nil {
		return err
	}

	encodedID, err := securecookie.EncodeMulti(session.Name(), session.ID, s.Codecs...)
	if err != nil {
		return fmt.Errorf("encode session cookie: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encodedID, session.Options))

	s.logger.DebugContext(r.Context(), "session saved", "session", session.ID, "new", session.IsNew)
	return nil
}
