package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
)

// DefaultBodyLimit is the body size limit used when a parser is given zero.
const DefaultBodyLimit int64 = 100 << 10

// JSONBody decodes application/json request bodies into the context.
// The raw body is left readable for downstream handlers. Malformed JSON
// yields 400 and bodies over limit yield 413.
func JSONBody(limit int64) Middleware {
	if limit <= 0 {
		limit = DefaultBodyLimit
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !hasBody(r) || !hasContentType(r, "application/json") {
				next.ServeHTTP(w, r)
				return
			}

			raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
			if err != nil {
				writeBodyError(w, r, err)
				return
			}

			var decoded any
			if len(bytes.TrimSpace(raw)) > 0 {
				if err := json.Unmarshal(raw, &decoded); err != nil {
					WriteError(w, r, http.StatusBadRequest, "malformed JSON body")
					return
				}
			}

			r.Body = io.NopCloser(bytes.NewReader(raw))
			ctx := context.WithValue(r.Context(), JSONBodyKey, decoded)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetJSONBody returns the body decoded by JSONBody, or nil.
func GetJSONBody(ctx context.Context) any {
	return ctx.Value(JSONBodyKey)
}

// URLEncodedBody parses application/x-www-form-urlencoded bodies into
// r.PostForm and r.Form. Nested keys are not expanded.
func URLEncodedBody(limit int64) Middleware {
	if limit <= 0 {
		limit = DefaultBodyLimit
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !hasBody(r) || !hasContentType(r, "application/x-www-form-urlencoded") {
				next.ServeHTTP(w, r)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			if err := r.ParseForm(); err != nil {
				writeBodyError(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func hasBody(r *http.Request) bool {
	return r.Body != nil && r.Body != http.NoBody && r.ContentLength != 0
}

func hasContentType(r *http.Request, want string) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == want
}

func writeBodyError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		WriteError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	WriteError(w, r, http.StatusBadRequest, "unreadable request body")
}
