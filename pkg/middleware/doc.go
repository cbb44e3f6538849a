// Package middleware provides the request pipeline and the HTTP middleware
// Portico installs at boot.
//
// # Pipeline
//
// A Pipeline is an ordered, append-only list of entries ending in a terminal
// handler (the route table). Install adds the boot entries once; Append adds
// entries contributed later through the extension bus:
//
//	p := middleware.NewPipeline(routeTable)
//	_ = p.Install(
//	    middleware.Entry{Name: "cookies", Middleware: middleware.CookieParser(codec)},
//	    middleware.Entry{Name: "images", Prefix: "/content/img", Middleware: middleware.Static(imgRoot, nil)},
//	)
//	_ = p.Append(middleware.Entry{Name: "audit", Middleware: audit})
//
// Entries run in insertion order. Each mutation publishes a new snapshot, so
// a request sees either the entries before an Append or after it, never a
// mix.
//
// # Prefix Mounting
//
// An entry with a Prefix runs only for paths equal to or below the prefix.
// Its middleware sees the path with the prefix removed; later entries see
// the original path.
//
// # Boot Middleware
//
//   - CookieParser: plain and securecookie-signed cookies
//   - Sessions: gorilla/sessions session in context, new sessions saved
//   - JSONBody, URLEncodedBody: request body parsers
//   - Compression: gzip via klauspost/compress/gzhttp
//   - Static: file serving with fall-through
//
// Recovery, RequestID and Logging wrap the whole pipeline and are not
// pipeline entries.
package middleware
