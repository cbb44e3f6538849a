// Portico is an HTTPS web server that serves a single-page application
// shell, partial views and static assets, and lets extension modules add
// middleware and API routes at runtime.
//
// Usage:
//
//	# Start server with default configuration
//	portico run
//
//	# Start with custom configuration file
//	portico run --config /path/to/config.yaml
//
//	# Check a configuration file
//	portico validate --config /path/to/config.yaml
//
//	# Generate development TLS credentials
//	portico certs generate --output certs/
//
//	# Show version information
//	portico version
package main

func main() {
	Execute()
}
