/*
Package secrets resolves ${secret:name} references in configuration values.

# Sources

A Resolver consults its sources in order and the first one holding a
secret wins:

  - EnvSource: environment variables, "cookie-secret" is read from
    PORTICO_SECRET_COOKIE_SECRET with the default prefix
  - FileSource: one file per secret in a directory, as mounted by
    Kubernetes or Docker; files must be 0600 or 0400

# Usage

	files, err := secrets.NewFileSource("/run/secrets", true, logger)
	if err != nil {
		return err
	}
	resolver := secrets.NewResolver(5*time.Minute, logger,
		secrets.NewEnvSource("PORTICO_SECRET_"),
		files,
	)
	defer resolver.Close()

	secret, err := resolver.Resolve(ctx, cfg.Session.CookieSecret)

Values without references are returned unchanged. Secret names are
redacted in log records.
*/
package secrets
