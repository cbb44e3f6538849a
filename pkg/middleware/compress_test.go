package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCompression(t *testing.T) {
	mw, err := Compression(-1, 64)
	if err != nil {
		t.Fatalf("Compression() error = %v", err)
	}

	large := strings.Repeat("portico ", 200)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		if r.URL.Path == "/small" {
			_, _ = io.WriteString(w, "tiny")
			return
		}
		_, _ = io.WriteString(w, large)
	}))

	t.Run("compresses large responses", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/large", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Header().Get("Content-Encoding") != "gzip" {
			t.Fatalf("Content-Encoding = %q, want gzip", rec.Header().Get("Content-Encoding"))
		}
		zr, err := gzip.NewReader(rec.Body)
		if err != nil {
			t.Fatal(err)
		}
		body, _ := io.ReadAll(zr)
		if string(body) != large {
			t.Error("decompressed body differs from original")
		}
	})

	t.Run("leaves small responses alone", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/small", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Header().Get("Content-Encoding") != "" {
			t.Errorf("small response was compressed")
		}
		if rec.Body.String() != "tiny" {
			t.Errorf("body = %q", rec.Body.String())
		}
	})

	t.Run("respects missing Accept-Encoding", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/large", nil))

		if rec.Header().Get("Content-Encoding") != "" {
			t.Error("response compressed for a client that did not ask")
		}
	})
}

func TestCompression_InvalidLevel(t *testing.T) {
	if _, err := Compression(42, 0); err == nil {
		t.Error("expected error for invalid compression level")
	}
}
