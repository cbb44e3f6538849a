package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	securityTLS "mercator-hq/portico/pkg/security/tls"
)

var generateFlags struct {
	hosts    string
	org      string
	validity int
	output   string
}

var certsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate development TLS credentials",
	Long: `Generate a throwaway certificate authority and a server certificate
signed by it, written as key.pem, ca.pem and cert.pem.

The generated credentials are for development and testing only.

Examples:
  # Generate certificate for localhost
  portico certs generate --host localhost

  # Generate with multiple hosts
  portico certs generate --host "localhost,127.0.0.1,app.local"

  # Generate with custom parameters
  portico certs generate \
    --host "localhost,127.0.0.1" \
    --org "My Company" \
    --validity 30 \
    --output certs/`,
	RunE: generateCertificate,
}

func init() {
	certsCmd.AddCommand(certsGenerateCmd)

	certsGenerateCmd.Flags().StringVar(&generateFlags.hosts, "host", "localhost,127.0.0.1", "comma-separated hostnames and IPs")
	certsGenerateCmd.Flags().StringVar(&generateFlags.org, "org", "Portico Development", "organization name")
	certsGenerateCmd.Flags().IntVar(&generateFlags.validity, "validity", 365, "validity in days")
	certsGenerateCmd.Flags().StringVarP(&generateFlags.output, "output", "o", "certs", "output directory")
}

func generateCertificate(cmd *cobra.Command, args []string) error {
	if generateFlags.validity <= 0 {
		return fmt.Errorf("invalid validity: %d (must be positive)", generateFlags.validity)
	}

	var hosts []string
	for _, h := range strings.Split(generateFlags.hosts, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Generating development credentials...")

	creds, err := securityTLS.GenerateDevCredentials(securityTLS.DevCertOptions{
		Hosts:        hosts,
		Organization: generateFlags.org,
		ValidFor:     time.Duration(generateFlags.validity) * 24 * time.Hour,
	})
	if err != nil {
		return err
	}

	paths, err := securityTLS.WriteCredentials(generateFlags.output, creds)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ Private key: %s\n", paths.Key)
	fmt.Fprintf(out, "✓ CA bundle:   %s\n", paths.CA)
	fmt.Fprintf(out, "✓ Certificate: %s\n", paths.Cert)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "To use with Portico, add to your config.yaml:")
	fmt.Fprintln(out, "---")
	fmt.Fprintln(out, "tls:")
	fmt.Fprintf(out, "  key_file: %q\n", paths.Key)
	fmt.Fprintf(out, "  ca_file: %q\n", paths.CA)
	fmt.Fprintf(out, "  cert_file: %q\n", paths.Cert)
	return nil
}
