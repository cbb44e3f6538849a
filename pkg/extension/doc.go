// Package extension provides the bus through which modules contribute
// middleware and routes to a running server.
//
// The bus is an ordinary value: create one, hand it to the server and to
// every module that wants to extend it.
//
//	bus := extension.NewBus()
//	srv := server.New(cfg, server.WithBus(bus))
//
//	// elsewhere, at any time
//	bus.PublishRoute(extension.RouteAddition{Method: "GET", Path: "users/:id", Handler: h})
//	bus.PublishMiddleware(middleware.Entry{Name: "audit", Middleware: audit})
//
// Publishing is synchronous and never fails from the publisher's side.
// Events published before the server subscribes are dropped. The server
// subscribes when it finishes installing its boot routes, so modules that
// publish from an OnListening callback or later are always heard.
package extension
