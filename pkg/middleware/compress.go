package middleware

import (
	"fmt"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// Compression gzip-encodes responses for clients that accept it. Responses
// smaller than minSize are sent uncompressed. level follows compress/gzip
// (-1 is the default level).
func Compression(level, minSize int) (Middleware, error) {
	if minSize <= 0 {
		minSize = gzhttp.DefaultMinSize
	}

	wrap, err := gzhttp.NewWrapper(
		gzhttp.CompressionLevel(level),
		gzhttp.MinSize(minSize),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid compression settings: %w", err)
	}

	return func(next http.Handler) http.Handler {
		return wrap(next)
	}, nil
}
