// Package logging provides structured logging for the Portico server.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - Structured logging with JSON and text formats
//   - Redaction of secret-bearing attributes (cookie secrets, tokens, keys)
//   - Context-aware logging with request IDs and session identifiers
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Redact: true,
//	})
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
//
//	ctx = logging.WithRequestID(ctx, "9b2d...")
//	logger.InfoContext(ctx, "request completed", "status", 200)
//
// Records logged through the *Context methods pick up the request_id and
// session fields stored in the context.
package logging
