package cli

import (
	"crypto/x509"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/philiph/xmldsig"
)

type signOptions struct {
	key             string
	certificates    []string
	digest          string
	canonical       string
	signatureMethod string
	prefix          string
	issuerSerial    bool
	insertFirst     bool
	output          string
}

func newSignCommand(a *app) *cobra.Command {
	o := &signOptions{}

	cmd := &cobra.Command{
		Use:   "sign [flags] FILE",
		Short: "Add an enveloped signature to an XML document.",
		Long: `Sign the whole document in FILE ("-" for stdin) with an enveloped
signature. The signing certificate and any chain given with --cert are
embedded in KeyInfo.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.sign(cmd, o, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&o.key, "key", "k", "", "PEM private key (RSA or ECDSA)")
	flags.StringSliceVar(&o.certificates, "cert", nil, "PEM certificate file to embed, signing certificate first (repeatable)")
	flags.StringVar(&o.digest, "digest", "sha256", "reference digest algorithm")
	flags.StringVar(&o.canonical, "c14n", "exc-c14n", "canonicalization method")
	flags.StringVar(&o.signatureMethod, "signature-method", "", "signature method (default chosen from the key)")
	flags.StringVar(&o.prefix, "prefix", xmldsig.DefaultPrefix, "namespace prefix of the signature elements")
	flags.BoolVar(&o.issuerSerial, "issuer-serial", false, "emit X509IssuerSerial for embedded certificates")
	flags.BoolVar(&o.insertFirst, "insert-first", false, "insert the signature as the first child of the document element")
	flags.StringVarP(&o.output, "output", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagFilename("key", "pem", "key")
	_ = cmd.MarkFlagFilename("cert", "pem", "crt")
	return cmd
}

func (a *app) sign(cmd *cobra.Command, o *signOptions, input string) error {
	cfg := a.config

	keyPath := stringFlag(cmd, "key", o.key, cfg.Key)
	if keyPath == "" {
		return fmt.Errorf("a private key is required (--key or key in the config file)")
	}
	private, err := xmldsig.LoadPrivateKey(keyPath)
	if err != nil {
		return err
	}

	method := stringFlag(cmd, "signature-method", o.signatureMethod, cfg.SignatureMethod)
	if method != "" {
		uri, ok := xmldsig.AlgorithmByName(method)
		if !ok {
			return xmldsig.ErrUnsupportedSignatureMethod.Withf("%q", method)
		}
		method = uri
	}
	key, err := xmldsig.NewSigningKey(method, private)
	if err != nil {
		return err
	}

	certPaths := o.certificates
	if !cmd.Flags().Changed("cert") && len(cfg.Certificates) > 0 {
		certPaths = cfg.Certificates
	}
	var certs []*x509.Certificate
	for _, path := range certPaths {
		loaded, err := xmldsig.LoadCertificates(path)
		if err != nil {
			return err
		}
		certs = append(certs, loaded...)
	}

	digest, err := resolveDigest(stringFlag(cmd, "digest", o.digest, cfg.Digest))
	if err != nil {
		return err
	}
	canonical, err := resolveCanonical(stringFlag(cmd, "c14n", o.canonical, cfg.Canonical))
	if err != nil {
		return err
	}

	signer, err := xmldsig.NewDocumentSigner(key, certs,
		xmldsig.WithDocumentDigestAlgorithm(digest),
		xmldsig.WithDocumentCanonicalMethod(canonical),
		xmldsig.WithDocumentPrefix(stringFlag(cmd, "prefix", o.prefix, cfg.Prefix)),
		xmldsig.WithDocumentIssuerSerial(o.issuerSerial || cfg.IssuerSerial),
		xmldsig.WithDocumentInsertFirst(o.insertFirst || cfg.InsertFirst),
		xmldsig.WithDocumentLogger(a.logger),
		xmldsig.WithDocumentMetrics(a.recorder),
	)
	if err != nil {
		return err
	}

	data, err := readInput(cmd, input)
	if err != nil {
		return err
	}
	signed, err := signer.Sign(data)
	if err != nil {
		return err
	}

	a.logger.Info("document signed",
		zap.String("input", input),
		zap.String("algorithm", xmldsig.AlgorithmName(key.Algorithm())),
		zap.String("digest", xmldsig.AlgorithmName(digest)),
		zap.Int("certificates", len(certs)),
	)
	return writeOutput(cmd, o.output, signed)
}
