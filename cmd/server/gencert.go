package main

import (
	"cmp"
	"fmt"
	"time"

	"github.com/atinyakov/todokeeper/internal/certgen"
	"github.com/spf13/cobra"
)

var (
	certHosts    []string
	certValidFor time.Duration
)

func genCertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen-cert",
		Short: "Write a self-signed server certificate for local HTTPS",
		Long: `Generate a self-signed ECDSA certificate and key for development.

The files are written to --tls-cert and --tls-key (default certs/server.crt
and certs/server.key). Start the server with the same flags to serve HTTPS.`,
		RunE: runGenCert,
	}
	cmd.Flags().StringSliceVar(&certHosts, "host", []string{"localhost", "127.0.0.1"}, "DNS names or IPs the certificate is valid for")
	cmd.Flags().DurationVar(&certValidFor, "valid-for", 365*24*time.Hour, "certificate validity")
	return cmd
}

func runGenCert(cmd *cobra.Command, _ []string) error {
	certPath, _ := cmd.Flags().GetString("tls-cert")
	keyPath, _ := cmd.Flags().GetString("tls-key")
	certPath = cmp.Or(certPath, "certs/server.crt")
	keyPath = cmp.Or(keyPath, "certs/server.key")

	certPEM, keyPEM, err := certgen.GenerateServerCertificate(certHosts, certValidFor)
	if err != nil {
		return err
	}
	if err := certgen.WritePair(certPath, keyPath, certPEM, keyPEM); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "certificate written to %s, key to %s\n", certPath, keyPath)
	return nil
}
