/*
Package tls loads TLS credentials and builds the secure transport Portico
listens on.

# Loading Credentials

The key, CA bundle and certificate are read in that order. The first file
that is missing, unreadable, empty or not PEM aborts the load with a
*CredentialReadError naming the file:

	loader := tls.NewLoader(nil)
	creds, err := loader.Load(tls.CredentialPaths{
		Key:  "/etc/portico/key.pem",
		CA:   "/etc/portico/ca.pem",
		Cert: "/etc/portico/cert.pem",
	})

# Building the Transport

Content that the TLS layer cannot use (mismatched key and certificate, an
expired leaf, an empty CA pool) fails with *TransportConstructionError:

	factory := tls.NewFactory(tls.Options{MinVersion: "1.2", ClientAuth: "none"}, logger)
	transport, err := factory.Build(creds, dispatcher)
	if err != nil {
		return err
	}
	go transport.Serve(listener)

# Certificate Auto-Reload

The served certificate can follow changes on disk:

	reloader := tls.NewCertificateReloader(paths, loader, 250*time.Millisecond, logger)
	if err := reloader.Start(ctx); err != nil {
		return err
	}
	transport.UseCertificateSource(reloader.GetCertificateFunc())
*/
package tls
