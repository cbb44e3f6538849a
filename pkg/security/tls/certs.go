package tls

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log/slog"
	"time"
)

// ValidateCertificate checks if a certificate is valid and not expired.
func ValidateCertificate(cert *tls.Certificate) error {
	if cert == nil {
		return fmt.Errorf("certificate is nil")
	}

	if len(cert.Certificate) == 0 {
		return fmt.Errorf("certificate chain is empty")
	}

	x509Cert, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return fmt.Errorf("failed to parse certificate: %w", err)
	}

	return ValidateX509Certificate(x509Cert)
}

// ValidateX509Certificate validates an x509 certificate for expiration.
func ValidateX509Certificate(cert *x509.Certificate) error {
	now := time.Now()

	if now.Before(cert.NotBefore) {
		return fmt.Errorf("certificate is not yet valid (valid from %s)", cert.NotBefore.Format(time.RFC3339))
	}

	if now.After(cert.NotAfter) {
		return fmt.Errorf("certificate expired on %s", cert.NotAfter.Format(time.RFC3339))
	}

	return nil
}

// CheckCertificateExpiration checks if a certificate is expiring soon.
// Returns the number of days until expiration and a warning if < 30 days.
func CheckCertificateExpiration(cert *x509.Certificate) (daysUntilExpiry int, warning string) {
	duration := time.Until(cert.NotAfter)
	daysUntilExpiry = int(duration.Hours() / 24)

	if daysUntilExpiry < 30 {
		warning = fmt.Sprintf("certificate expires in %d days (on %s)",
			daysUntilExpiry, cert.NotAfter.Format("2006-01-02"))
	}

	return daysUntilExpiry, warning
}

// ValidateCertificateChain validates a certificate chain against a CA pool.
func ValidateCertificateChain(cert *x509.Certificate, caPool *x509.CertPool) error {
	opts := x509.VerifyOptions{
		Roots:     caPool,
		KeyUsages: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}

	if _, err := cert.Verify(opts); err != nil {
		return fmt.Errorf("certificate chain validation failed: %w", err)
	}

	return nil
}

// logCertificate logs the subject and expiry of a served certificate.
func logCertificate(logger *slog.Logger, cert *x509.Certificate) {
	daysUntilExpiry, warning := CheckCertificateExpiration(cert)

	if warning != "" {
		logger.Warn("certificate expiring soon",
			"subject", cert.Subject.CommonName,
			"expires_in_days", daysUntilExpiry,
			"expires_at", cert.NotAfter.Format(time.RFC3339),
		)
		return
	}

	logger.Info("certificate loaded",
		"subject", cert.Subject.CommonName,
		"issuer", cert.Issuer.CommonName,
		"expires_in_days", daysUntilExpiry,
		"expires_at", cert.NotAfter.Format(time.RFC3339),
	)
}
