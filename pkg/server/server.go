package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"mercator-hq/portico/pkg/config"
	"mercator-hq/portico/pkg/extension"
	"mercator-hq/portico/pkg/middleware"
	"mercator-hq/portico/pkg/routes"
	"mercator-hq/portico/pkg/security/secrets"
	securityTLS "mercator-hq/portico/pkg/security/tls"
	"mercator-hq/portico/pkg/session"
	"mercator-hq/portico/pkg/telemetry/health"
	"mercator-hq/portico/pkg/telemetry/metrics"
)

// ListenFunc binds a listener. It matches net.ListenConfig.Listen.
type ListenFunc func(ctx context.Context, network, address string) (net.Listener, error)

// Server drives the start sequence of a Portico instance and owns its
// pipeline, route table and transport.
type Server struct {
	cfg         config.Config
	logger      *slog.Logger
	bus         *extension.Bus
	loader      *securityTLS.Loader
	listen      ListenFunc
	onListening func(host string, port int)
	metrics     *metrics.Collector
	checker     *health.Checker
	version     health.VersionInfo
	extra       []middleware.Entry

	pipeline *middleware.Pipeline
	table    *routes.Table
	handler  http.Handler

	mu      sync.Mutex
	state   State
	cause   error
	history []Transition

	// Resources acquired by Start; released by Shutdown or a failed start.
	runCtx    context.Context
	runCancel context.CancelFunc
	transport *securityTLS.Transport
	listener  net.Listener
	subs      []*extension.Subscription
	reloader  *securityTLS.CertificateReloader
	secrets   *secrets.Resolver
	sessions  session.Backend
	pruner    *session.Pruner

	done     chan error
	stopped  atomic.Bool
	stopOnce sync.Once
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithBus sets the extension bus external modules publish on. Without it
// the server creates its own, available through Bus.
func WithBus(bus *extension.Bus) Option {
	return func(s *Server) {
		s.bus = bus
	}
}

// WithReadFile replaces the function used to read credential files.
func WithReadFile(fn securityTLS.ReadFileFunc) Option {
	return func(s *Server) {
		s.loader = securityTLS.NewLoader(fn)
	}
}

// WithListenFunc replaces the function used to bind the listener.
func WithListenFunc(fn ListenFunc) Option {
	return func(s *Server) {
		s.listen = fn
	}
}

// OnListening registers fn to receive the bound host and port once the
// server is listening.
func OnListening(fn func(host string, port int)) Option {
	return func(s *Server) {
		s.onListening = fn
	}
}

// WithMetrics sets the metrics collector. Without it a collector is
// created when metrics are enabled in the configuration.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Server) {
		s.metrics = c
	}
}

// WithVersion sets the build information served on /version.
func WithVersion(info health.VersionInfo) Option {
	return func(s *Server) {
		s.version = info
	}
}

// WithMiddleware adds boot entries installed after the standard set.
func WithMiddleware(entries ...middleware.Entry) Option {
	return func(s *Server) {
		s.extra = append(s.extra, entries...)
	}
}

// New creates a server in the Created state. Defaults are applied to a
// copy of cfg; the caller's value is not modified.
func New(cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		cfg:     *cfg,
		logger:  slog.Default().With("component", "server"),
		loader:  securityTLS.NewLoader(nil),
		listen:  new(net.ListenConfig).Listen,
		checker: health.New(2 * time.Second),
		state:   StateCreated,
		done:    make(chan error, 1),
	}
	config.ApplyDefaults(&s.cfg)

	for _, opt := range opts {
		opt(s)
	}

	if s.metrics == nil && s.cfg.Telemetry.Metrics.Enabled {
		s.metrics = metrics.NewCollector(&s.cfg.Telemetry.Metrics, nil)
	}
	if s.bus == nil {
		busOpts := []extension.Option{extension.WithLogger(s.logger.With("component", "extension"))}
		if s.metrics != nil {
			busOpts = append(busOpts, extension.WithObserver(s.metrics))
		}
		s.bus = extension.NewBus(busOpts...)
	}

	var tableOpts []routes.Option
	var pipelineOpts []middleware.Option
	tableOpts = append(tableOpts, routes.WithLogger(s.logger.With("component", "routes")))
	pipelineOpts = append(pipelineOpts, middleware.WithLogger(s.logger.With("component", "pipeline")))
	if s.metrics != nil {
		tableOpts = append(tableOpts, routes.WithSizeObserver(s.metrics.SetRouteCount))
		pipelineOpts = append(pipelineOpts, middleware.WithSizeObserver(s.metrics.SetPipelineSize))
		s.metrics.SetState(StateCreated.String())
	}

	s.table = routes.NewTable(s.cfg.API.Prefix, tableOpts...)
	s.pipeline = middleware.NewPipeline(s.table, pipelineOpts...)
	s.handler = s.newDispatcher()

	s.checker.RegisterCheck("lifecycle", health.StateCheck(func() string {
		return s.State().String()
	}, StateListening.String()))

	return s
}

// bootContext carries stage outputs through a single Start call. It is
// dropped when Start returns, taking the credential bytes with it.
type bootContext struct {
	ctx   context.Context
	creds *securityTLS.Credentials
	host  string
}

// Start runs the start sequence: load credentials, build the transport,
// install boot middleware, install boot routes and activate the extension
// bus subscriptions, then bind and serve. It returns once the server is
// listening or a stage failed.
//
// Start may be called once. Later calls return *AlreadyStartedError, or
// *AlreadyFailedError if the first call failed.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateCreated:
	case StateFailed:
		err := &AlreadyFailedError{Cause: s.cause}
		s.mu.Unlock()
		return err
	default:
		err := &AlreadyStartedError{State: s.state}
		s.mu.Unlock()
		return err
	}
	s.runCtx, s.runCancel = context.WithCancel(context.Background())
	s.advanceLocked(StateInitializing)
	s.mu.Unlock()

	s.logger.Info("starting server")

	b := &bootContext{ctx: ctx}
	for _, st := range s.stages() {
		if err := ctx.Err(); err != nil {
			return s.fail(st.name, err)
		}

		started := time.Now()
		err := st.run(b)
		if s.metrics != nil {
			s.metrics.ObserveStage(st.name, err, time.Since(started))
		}
		if err != nil {
			return s.fail(st.name, err)
		}
		s.logger.Debug("stage complete", "stage", st.name, "duration", time.Since(started))

		if st.enters != StateInitializing {
			s.advance(st.enters)
		}
	}

	s.reportListening(b.host)
	return nil
}

func (s *Server) advance(to State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked(to)
}

// advanceLocked applies a transition. Callers hold s.mu.
func (s *Server) advanceLocked(to State) {
	next, err := transition(s.state, to)
	if err != nil {
		// Stages are fixed; an illegal move is a programming error.
		panic(err)
	}
	s.history = append(s.history, Transition{From: s.state, To: next, At: time.Now()})
	s.logger.Debug("lifecycle transition", "from", s.state.String(), "to", next.String())
	s.state = next

	if s.metrics != nil {
		s.metrics.SetState(next.String())
	}
}

// fail releases everything acquired so far and moves to Failed.
func (s *Server) fail(stage string, err error) error {
	stageErr := &StageError{Stage: stage, Err: err}

	s.logger.Error("server start failed", "stage", stage, "error", err)
	s.release()

	s.mu.Lock()
	s.cause = stageErr
	s.advanceLocked(StateFailed)
	s.mu.Unlock()

	return stageErr
}

// release cancels subscriptions and closes the listener and background
// workers. It is safe to call on partially started servers.
func (s *Server) release() {
	for _, sub := range s.subs {
		sub.Cancel()
	}
	if s.listener != nil {
		s.listener.Close()
	}
	if s.reloader != nil {
		if err := s.reloader.Stop(); err != nil {
			s.logger.Warn("failed to stop certificate reloader", "error", err)
		}
	}
	if s.pruner != nil {
		s.pruner.Stop()
	}
	if s.secrets != nil {
		if err := s.secrets.Close(); err != nil {
			s.logger.Warn("failed to close secret sources", "error", err)
		}
	}
	if s.sessions != nil {
		if err := s.sessions.Close(); err != nil {
			s.logger.Warn("failed to close session backend", "error", err)
		}
	}
	if s.runCancel != nil {
		s.runCancel()
	}
}

func (s *Server) reportListening(host string) {
	port := 0
	if tcp, ok := s.listener.Addr().(*net.TCPAddr); ok {
		port = tcp.Port
	}

	s.logger.Info("server listening", "host", host, "port", port)
	if s.onListening != nil {
		s.onListening(host, port)
	}
}

// serve runs the transport until shutdown and reports unexpected errors
// on Done.
func (s *Server) serve(t *securityTLS.Transport, ln net.Listener) {
	err := t.Serve(ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("server stopped unexpectedly", "error", err)
		s.done <- err
	}
	close(s.done)
}

// Shutdown gracefully stops a listening server, bounded by ctx and the
// configured shutdown timeout. The lifecycle state is unchanged; Stopped
// reports true afterwards. Shutdown on a server that is not listening is a
// no-op.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.State() != StateListening {
		return nil
	}

	var shutdownErr error
	s.stopOnce.Do(func() {
		s.logger.Info("initiating graceful shutdown", "timeout", s.cfg.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.Server.ShutdownTimeout)
		defer cancel()

		for _, sub := range s.subs {
			sub.Cancel()
		}
		if err := s.transport.Server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}
		s.release()
		s.stopped.Store(true)

		s.logger.Info("server stopped")
	})

	return shutdownErr
}

// Done is closed when the transport stops serving. An unexpected serve
// error is delivered on it first.
func (s *Server) Done() <-chan error {
	return s.done
}

// Stopped reports whether Shutdown has completed.
func (s *Server) Stopped() bool {
	return s.stopped.Load()
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the cause of a failed start, or nil.
func (s *Server) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cause
}

// Transitions returns the state changes made so far, oldest first.
func (s *Server) Transitions() []Transition {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Transition, len(s.history))
	copy(out, s.history)
	return out
}

// Addr returns the bound listener address, or nil before Listening.
func (s *Server) Addr() net.Addr {
	if s.State() != StateListening {
		return nil
	}
	return s.listener.Addr()
}

// Handler returns the dispatcher serving every request.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Bus returns the extension bus.
func (s *Server) Bus() *extension.Bus {
	return s.bus
}

// Pipeline returns the middleware pipeline.
func (s *Server) Pipeline() *middleware.Pipeline {
	return s.pipeline
}

// Routes returns the route table.
func (s *Server) Routes() *routes.Table {
	return s.table
}
