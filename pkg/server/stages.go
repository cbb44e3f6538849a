package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/gorilla/securecookie"

	"mercator-hq/portico/pkg/config"
	"mercator-hq/portico/pkg/extension"
	"mercator-hq/portico/pkg/middleware"
	"mercator-hq/portico/pkg/routes"
	"mercator-hq/portico/pkg/security/secrets"
	securityTLS "mercator-hq/portico/pkg/security/tls"
	"mercator-hq/portico/pkg/session"
	"mercator-hq/portico/pkg/telemetry/health"
)

func (s *Server) credentialPaths() securityTLS.CredentialPaths {
	return securityTLS.CredentialPaths{
		Key:  s.cfg.ResolvePath(s.cfg.TLS.KeyFile),
		CA:   s.cfg.ResolvePath(s.cfg.TLS.CAFile),
		Cert: s.cfg.ResolvePath(s.cfg.TLS.CertFile),
	}
}

func (s *Server) loadCredentials(b *bootContext) error {
	creds, err := s.loader.Load(s.credentialPaths())
	if err != nil {
		var readErr *securityTLS.CredentialReadError
		if errors.As(err, &readErr) {
			s.logger.Error("failed to read credential", "kind", readErr.Kind, "path", readErr.Path, "error", readErr.Err)
		}
		return err
	}
	b.creds = creds
	return nil
}

func (s *Server) buildTransport(b *bootContext) error {
	factory := securityTLS.NewFactory(securityTLS.Options{
		MinVersion:     s.cfg.TLS.MinVersion,
		CipherSuites:   s.cfg.TLS.CipherSuites,
		ClientAuth:     s.cfg.TLS.ClientAuth,
		ReadTimeout:    s.cfg.Server.ReadTimeout,
		WriteTimeout:   s.cfg.Server.WriteTimeout,
		IdleTimeout:    s.cfg.Server.IdleTimeout,
		MaxHeaderBytes: s.cfg.Server.MaxHeaderBytes,
	}, s.logger.With("component", "tls"))

	transport, err := factory.Build(b.creds, s.handler)
	b.creds = nil
	if err != nil {
		var buildErr *securityTLS.TransportConstructionError
		if errors.As(err, &buildErr) {
			s.logger.Error("failed to construct transport", "tls_stage", buildErr.Stage, "error", buildErr.Err)
		}
		return err
	}
	s.transport = transport

	if s.cfg.TLS.Watch {
		reloader := securityTLS.NewCertificateReloader(
			s.credentialPaths(), s.loader, s.cfg.TLS.WatchDebounce, s.logger.With("component", "tls.reload"))
		if err := reloader.Start(s.runCtx); err != nil {
			return fmt.Errorf("failed to start certificate reloader: %w", err)
		}
		s.reloader = reloader
		transport.UseCertificateSource(reloader.GetCertificateFunc())
	}
	return nil
}

func (s *Server) installMiddleware(b *bootContext) error {
	entries, err := s.bootMiddleware(b.ctx)
	if err != nil {
		return err
	}
	return s.pipeline.Install(append(entries, s.extra...)...)
}

// bootMiddleware assembles the standard entries in their fixed order:
// cookies, session, JSON body, URL-encoded body, compression, then the
// three static roots.
func (s *Server) bootMiddleware(ctx context.Context) ([]middleware.Entry, error) {
	cfg := &s.cfg
	cookieSecret, err := s.cookieSecret(ctx)
	if err != nil {
		return nil, err
	}
	secret := []byte(cookieSecret)
	codecs := securecookie.CodecsFromPairs(secret)

	backend, err := s.newSessionBackend()
	if err != nil {
		return nil, err
	}
	s.sessions = backend

	store := session.NewStore(backend, cfg.Session.MaxAge, secret)
	s.pruner = session.NewPruner(backend, cfg.Session.PruneSchedule)
	if err := s.pruner.Start(s.runCtx); err != nil {
		return nil, err
	}

	compress, err := middleware.Compression(cfg.HTTP.CompressionLevel, cfg.HTTP.CompressionMinSize)
	if err != nil {
		return nil, err
	}

	staticLogger := s.logger.With("component", "static")

	return []middleware.Entry{
		{Name: "cookies", Middleware: middleware.CookieParser(codecs...)},
		{Name: "session", Middleware: middleware.Sessions(store, cfg.Session.CookieName, s.logger.With("component", "session"))},
		{Name: "json", Middleware: middleware.JSONBody(cfg.HTTP.BodyLimit)},
		{Name: "urlencoded", Middleware: middleware.URLEncodedBody(cfg.HTTP.BodyLimit)},
		{Name: "compression", Middleware: compress},
		{Name: "static", Prefix: "/", Middleware: middleware.Static(cfg.ResolvePath(cfg.Static.DocumentRoot), staticLogger)},
		{Name: "static:img", Prefix: cfg.Static.ImagePrefix, Middleware: middleware.Static(cfg.ResolvePath(cfg.Static.ImageRoot), staticLogger)},
		{Name: "static:language", Prefix: cfg.Static.LanguagePrefix, Middleware: middleware.Static(cfg.ResolvePath(cfg.Static.LanguageRoot), staticLogger)},
	}, nil
}

// cookieSecret returns session.cookie_secret with ${secret:name}
// references resolved from the environment and the secrets directory.
func (s *Server) cookieSecret(ctx context.Context) (string, error) {
	raw := s.cfg.Session.CookieSecret
	if raw == "" {
		return "", errors.New("session cookie secret is not configured")
	}
	if !secrets.HasReferences(raw) {
		return raw, nil
	}

	logger := s.logger.With("component", "secrets")
	sources := []secrets.Source{secrets.NewEnvSource(s.cfg.Secrets.EnvPrefix)}
	if s.cfg.Secrets.Dir != "" {
		files, err := secrets.NewFileSource(s.cfg.ResolvePath(s.cfg.Secrets.Dir), s.cfg.Secrets.Watch, logger)
		if err != nil {
			return "", err
		}
		sources = append(sources, files)
	}
	s.secrets = secrets.NewResolver(s.cfg.Secrets.CacheTTL, logger, sources...)

	secret, err := s.secrets.Resolve(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("session cookie secret: %w", err)
	}
	if secret == "" {
		return "", errors.New("session cookie secret resolved to an empty value")
	}
	return secret, nil
}

func (s *Server) newSessionBackend() (session.Backend, error) {
	switch s.cfg.Session.Backend {
	case "sqlite":
		backend, err := session.NewSQLiteBackend(session.SQLiteBackendConfig{
			DBPath:      s.cfg.ResolvePath(s.cfg.Session.SQLite.Path),
			BusyTimeout: s.cfg.Session.SQLite.BusyTimeout,
		})
		if err != nil {
			return nil, err
		}
		s.checker.RegisterCheck("sessions", backend.Ping)
		return backend, nil
	case "memory", "":
		return session.NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", s.cfg.Session.Backend)
	}
}

func (s *Server) installRoutes(b *bootContext) error {
	views := routes.NewViewResolver(s.cfg.ResolvePath(s.cfg.Static.ViewsRoot), s.logger.With("component", "views"))
	if err := s.table.InstallStatic(views); err != nil {
		return err
	}

	if err := health.Mount(s.table, s.checker, s.version); err != nil {
		return err
	}
	if s.metrics != nil && s.cfg.Telemetry.Metrics.Enabled {
		if err := s.table.Register(http.MethodGet, s.cfg.Telemetry.Metrics.Path, s.metrics.Handler()); err != nil {
			return err
		}
	}

	return s.subscribe()
}

// subscribe connects the extension bus topics to the pipeline and route
// table. Events published before this point were dropped.
func (s *Server) subscribe() error {
	mwSub, err := s.bus.SubscribeMiddleware(func(entries []middleware.Entry) error {
		return s.pipeline.Append(entries...)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", extension.TopicMiddleware, err)
	}
	s.subs = append(s.subs, mwSub)

	routeSub, err := s.bus.SubscribeRoutes(func(r extension.RouteAddition) error {
		return s.table.RegisterExternal(r.Method, r.Path, r.Handler)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", extension.TopicRoutes, err)
	}
	s.subs = append(s.subs, routeSub)
	return nil
}

func (s *Server) bind(b *bootContext) error {
	host, port, err := s.cfg.Server.Address()
	if err != nil {
		return err
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	ln, err := s.listen(b.ctx, "tcp", addr)
	if err != nil {
		s.logger.Error("failed to bind listener", "address", addr, "error", err)
		return err
	}
	s.listener = ln
	b.host = host

	go s.serve(s.transport, ln)
	return nil
}

// Config returns the configuration the server runs with, defaults applied.
func (s *Server) Config() config.Config {
	return s.cfg
}
