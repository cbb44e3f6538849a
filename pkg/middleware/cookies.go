package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/securecookie"
)

// Cookies holds the cookies of a request. Signed holds the decoded values
// of cookies whose signature verified against the parser's codecs; those
// cookies do not also appear in Plain.
type Cookies struct {
	Plain  map[string]string
	Signed map[string]string
}

// CookieParser parses request cookies into the context. Cookies encoded by
// SetSignedCookie with the same codecs are verified and exposed as Signed.
func CookieParser(codecs ...securecookie.Codec) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			parsed := &Cookies{
				Plain:  make(map[string]string),
				Signed: make(map[string]string),
			}

			for _, c := range r.Cookies() {
				if len(codecs) > 0 {
					var value string
					if err := securecookie.DecodeMulti(c.Name, c.Value, &value, codecs...); err == nil {
						parsed.Signed[c.Name] = value
						continue
					}
				}
				parsed.Plain[c.Name] = c.Value
			}

			ctx := context.WithValue(r.Context(), CookiesKey, parsed)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetCookies returns the cookies parsed by CookieParser, or nil.
func GetCookies(ctx context.Context) *Cookies {
	if c, ok := ctx.Value(CookiesKey).(*Cookies); ok {
		return c
	}
	return nil
}

// SetSignedCookie encodes value with the first codec and sets the cookie.
func SetSignedCookie(w http.ResponseWriter, cookie *http.Cookie, codecs ...securecookie.Codec) error {
	encoded, err := securecookie.EncodeMulti(cookie.Name, cookie.Value, codecs...)
	if err != nil {
		return err
	}
	signed := *cookie
	signed.Value = encoded
	http.SetCookie(w, &signed)
	return nil
}
