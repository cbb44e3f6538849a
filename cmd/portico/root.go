package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/portico/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "portico",
	Short: "Portico - HTTPS application shell server",
	Long: `Portico is an HTTPS web server for single-page applications.

It serves the application shell, partial views and static assets over TLS,
and accepts middleware and API routes from extension modules at runtime:
  - TLS with a configurable key, certificate and CA bundle
  - Signed session cookies backed by memory or SQLite
  - JSON and URL-encoded request bodies
  - Compressed responses
  - Health, readiness and Prometheus metrics endpoints`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with a code derived from the error.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
