/*
Package security groups the transport and secret handling used by Portico.

# TLS

Subpackage tls reads the three credential files and builds the HTTPS
transport from them:

	loader := tls.NewLoader(os.ReadFile)
	creds, err := loader.Load(tls.CredentialPaths{
		Key:  "/etc/portico/certs/key.pem",
		CA:   "/etc/portico/certs/ca.pem",
		Cert: "/etc/portico/certs/cert.pem",
	})
	if err != nil {
		return err
	}

	transport, err := tls.NewFactory(tls.Options{MinVersion: "1.2"}, logger).Build(creds, handler)

A CertificateReloader watches the files and swaps the served certificate
without a restart. GenerateDevCredentials writes a self-signed CA and leaf
for local development.

# Secrets

Subpackage secrets resolves ${secret:name} references in configuration
values, looking in the environment first and then in a secrets directory:

	resolver := secrets.NewResolver(5*time.Minute, logger,
		secrets.NewEnvSource("PORTICO_SECRET_"),
		files,
	)
	value, err := resolver.Resolve(ctx, "${secret:cookie-secret}")
*/
package security
