package cli

import (
	"crypto/x509"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/philiph/xmldsig"
)

type verifyOptions struct {
	trusted      []string
	idAttributes []string
	output       string
}

func newVerifyCommand(a *app) *cobra.Command {
	o := &verifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify [flags] FILE",
		Short: "Verify the signature of an XML document.",
		Long: `Verify the first signature in FILE ("-" for stdin) against the trusted
certificates. On success only the signed content is written out: the
document element when the whole document is signed, otherwise the first
referenced element.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.verify(cmd, o, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&o.trusted, "trusted", nil, "PEM file of trusted signing certificates (repeatable)")
	flags.StringSliceVar(&o.idAttributes, "id-attribute", nil, "extra identifier attribute for #id references, such as ID or wsu:Id (repeatable)")
	flags.StringVarP(&o.output, "output", "o", "", "output file for the signed content (default stdout)")
	_ = cmd.MarkFlagFilename("trusted", "pem", "crt")
	return cmd
}

func (a *app) verify(cmd *cobra.Command, o *verifyOptions, input string) error {
	cfg := a.config

	trustedPaths := o.trusted
	if !cmd.Flags().Changed("trusted") {
		trustedPaths = cfg.Trusted
	}
	if len(trustedPaths) == 0 {
		return fmt.Errorf("at least one trusted certificate is required (--trusted or trusted in the config file)")
	}
	var trusted []*x509.Certificate
	for _, path := range trustedPaths {
		certs, err := xmldsig.LoadCertificates(path)
		if err != nil {
			return err
		}
		trusted = append(trusted, certs...)
	}

	opts := []xmldsig.DocumentOption{
		xmldsig.WithDocumentLogger(a.logger),
		xmldsig.WithDocumentMetrics(a.recorder),
	}
	idAttributes := append(append([]string(nil), cfg.IDAttributes...), o.idAttributes...)
	if len(idAttributes) > 0 {
		opts = append(opts, xmldsig.WithDocumentIDAttributes(idAttributes...))
	}
	if len(cfg.IDNamespaces) > 0 {
		opts = append(opts, xmldsig.WithDocumentIDNamespaces(cfg.IDNamespaces))
	}
	fetcher, err := newFetcher(cfg.Fetch, a.logger)
	if err != nil {
		return err
	}
	if fetcher != nil {
		opts = append(opts, xmldsig.WithDocumentFetcher(fetcher))
	}

	verifier, err := xmldsig.NewVerifier(trusted, opts...)
	if err != nil {
		return err
	}

	data, err := readInput(cmd, input)
	if err != nil {
		return err
	}

	ctx, cancel := a.context(cmd)
	defer cancel()
	validated, err := verifier.VerifyContext(ctx, data)
	if err != nil {
		return err
	}
	return writeOutput(cmd, o.output, validated)
}
