package main

import (
	"github.com/spf13/cobra"
)

var certsCmd = &cobra.Command{
	Use:   "certs",
	Short: "Manage TLS certificates",
	Long: `Manage the TLS credentials Portico serves with.

Subcommands:
  generate - Generate a development CA and server certificate
  validate - Validate a key, CA bundle and certificate

Examples:
  # Generate development credentials into certs/
  portico certs generate --host localhost

  # Validate the credentials named in config.yaml
  portico certs validate

  # Validate explicit files
  portico certs validate --cert cert.pem --key key.pem --ca ca.pem`,
}

func init() {
	rootCmd.AddCommand(certsCmd)
}
