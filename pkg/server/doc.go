// Package server provides the Portico server lifecycle.
//
// A Server moves through a fixed sequence of states:
//
//	Created -> Initializing -> MiddlewareInstalled -> RoutesInstalled -> Listening
//
// Any stage failure moves it to Failed instead. Start runs the stages in
// order, each gated on the previous one:
//
//   - credentials: read the key, CA bundle and certificate
//   - transport: build the TLS config and HTTP server
//   - middleware: install the boot middleware (cookies, session, body
//     parsers, compression, static roots)
//   - routes: install the root document, partial views, health and metrics
//     endpoints, then subscribe to the extension bus
//   - listen: bind host:port and serve
//
// # Basic Usage
//
//	bus := extension.NewBus()
//	srv := server.New(cfg,
//	    server.WithBus(bus),
//	    server.OnListening(func(host string, port int) {
//	        fmt.Printf("listening on %s:%d\n", host, port)
//	    }),
//	)
//	if err := srv.Start(ctx); err != nil {
//	    var stageErr *server.StageError
//	    if errors.As(err, &stageErr) {
//	        log.Fatalf("start failed at %s: %v", stageErr.Stage, stageErr.Err)
//	    }
//	}
//
//	// Other modules extend the running server through the bus.
//	bus.PublishRoute(extension.RouteAddition{Method: "GET", Path: "/users/:id", Handler: h})
//
//	<-ctx.Done()
//	srv.Shutdown(context.Background())
//
// # Extension
//
// Middleware published on the bus is appended after the boot entries and
// routes are mounted under the API prefix (default "/api/"). Both take
// effect atomically: a request sees the pipeline and route table either
// before or after a change, never in between. Events published before the
// routes stage subscribes are dropped.
//
// # Failure
//
// A failed stage cancels the bus subscriptions, closes any bound listener
// and returns a *StageError wrapping the cause. The credential and
// transport errors from pkg/security/tls remain reachable with errors.As.
// A server cannot be restarted; Start on a failed server returns
// *AlreadyFailedError.
package server
