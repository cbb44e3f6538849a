package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/sessions"

	"mercator-hq/portico/pkg/telemetry/logging"
)

// Sessions loads the named session from store into the request context.
// A new session is saved before the response header is written, so every
// client receives a session cookie on its first response. Handlers that
// modify an existing session save it with sessions.Save.
func Sessions(store sessions.Store, name string, logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := store.Get(r, name)
			if err != nil {
				// gorilla stores return a fresh session alongside decode errors
				logger.WarnContext(r.Context(), "discarding unreadable session", "error", err)
			}
			if session == nil {
				WriteError(w, r, http.StatusInternalServerError, "session unavailable")
				return
			}

			ctx := context.WithValue(r.Context(), SessionKey, session)
			if session.ID != "" {
				ctx = logging.WithSession(ctx, session.ID)
			}
			r = r.WithContext(ctx)

			sw := &sessionWriter{ResponseWriter: w}
			if session.IsNew {
				sw.save = func() {
					if err := session.Save(r, w); err != nil {
						logger.ErrorContext(r.Context(), "failed to save session", "error", err)
					}
				}
			}

			next.ServeHTTP(sw, r)
			sw.commit()
		})
	}
}

// GetSession returns the session loaded by Sessions, or nil.
func GetSession(ctx context.Context) *sessions.Session {
	if s, ok := ctx.Value(SessionKey).(*sessions.Session); ok {
		return s
	}
	return nil
}

// sessionWriter runs save once, just before the header is written.
type sessionWriter struct {
	http.ResponseWriter
	once sync.Once
	save func()
}

func (sw *sessionWriter) commit() {
	sw.once.Do(func() {
		if sw.save != nil {
			sw.save()
		}
	})
}

func (sw *sessionWriter) WriteHeader(code int) {
	sw.commit()
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *sessionWriter) Write(b []byte) (int, error) {
	sw.commit()
	return sw.ResponseWriter.Write(b)
}

func (sw *sessionWriter) Flush() {
	sw.commit()
	if f, ok := sw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (sw *sessionWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}
