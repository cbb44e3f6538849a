package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"mercator-hq/portico/pkg/cli"
	"mercator-hq/portico/pkg/config"
	"mercator-hq/portico/pkg/server"
)

var runFlags struct {
	host     string
	port     int
	logLevel string
	dryRun   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Portico server",
	Long: `Start the Portico server with the specified configuration.

The server loads its TLS credentials, installs the boot middleware and
routes, then listens for HTTPS connections until it receives SIGINT or
SIGTERM.

Examples:
  # Start with default config
  portico run

  # Start with custom config
  portico run --config /etc/portico/config.yaml

  # Override the bind address
  portico run --host 0.0.0.0 --port 8443

  # Validate config without starting server
  portico run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFlags.host, "host", "", "override bind host")
	runCmd.Flags().IntVarP(&runFlags.port, "port", "p", -1, "override bind port")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}

	if runFlags.host != "" {
		cfg.Server.Host = runFlags.host
	}
	if runFlags.port >= 0 {
		cfg.Server.Port = runFlags.port
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	out := cmd.OutOrStdout()
	if runFlags.dryRun {
		fmt.Fprintln(out, "✓ Configuration valid")
		return nil
	}

	fmt.Fprintf(out, "Portico v%s\n", Version)
	fmt.Fprintf(out, "Loading configuration from: %s\n", cfgFile)

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := cli.SetupSignalHandler(parent)
	defer stop()

	srv := server.New(cfg,
		server.WithLogger(logger.With("component", "server")),
		server.WithVersion(versionInfo()),
		server.OnListening(func(host string, port int) {
			addr := net.JoinHostPort(host, strconv.Itoa(port))
			fmt.Fprintf(out, "✓ Server listening on https://%s\n", addr)
			fmt.Fprintf(out, "✓ Health endpoint: https://%s/health\n", addr)
			if cfg.Telemetry.Metrics.Enabled {
				fmt.Fprintf(out, "✓ Metrics endpoint: https://%s%s\n", addr, cfg.Telemetry.Metrics.Path)
			}
		}),
	)

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	select {
	case err, ok := <-srv.Done():
		if ok && err != nil {
			_ = srv.Shutdown(context.Background())
			return cli.NewCommandError("run", err)
		}
		return nil
	case <-ctx.Done():
		fmt.Fprintln(out, "\nReceived shutdown signal, shutting down gracefully...")
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		slog.Error("shutdown failed", "error", err)
		return cli.NewCommandError("run", err)
	}

	fmt.Fprintln(out, "✓ Server stopped")
	return nil
}
