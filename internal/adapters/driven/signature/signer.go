package signature

import (
	"crypto/x509"
	"errors"
	"fmt"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/philiph/xmldsig/internal/core/domain"
	"github.com/philiph/xmldsig/internal/core/dsig"
	"github.com/philiph/xmldsig/internal/core/ports"
)

// DocumentSigner adds an enveloped signature over the whole document
// (Reference URI="") with the enveloped-signature transform followed by
// the configured canonicalization. Certificates, when given, are embedded
// in KeyInfo with the signing certificate first.
type DocumentSigner struct {
	key   ports.Key
	certs [][]byte
	opts  *options
}

// NewDocumentSigner creates a signer for key. certs may be empty for keys
// without certificates, such as HMAC keys.
func NewDocumentSigner(key ports.Key, certs []*x509.Certificate, opts ...Option) (*DocumentSigner, error) {
	if key == nil {
		return nil, domain.ErrInvalidKey.Withf("signer needs a key")
	}
	o := newOptions(opts)
	if !domain.IsCanonicalMethod(o.canonicalMethod) {
		return nil, domain.ErrInvalidCanonicalMethod.Withf("%q", o.canonicalMethod)
	}
	if !dsig.IsDigestSupported(o.digestAlgorithm) {
		return nil, domain.ErrUnsupportedDigestAlgorithm.Withf("%q", o.digestAlgorithm)
	}
	der := make([][]byte, 0, len(certs))
	for _, cert := range certs {
		der = append(der, cert.Raw)
	}
	return &DocumentSigner{key: key, certs: der, opts: o}, nil
}

// Sign adds an enveloped XML signature to the document and returns the
// signed bytes.
func (s *DocumentSigner) Sign(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("empty document")
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.New("empty XML document")
	}

	ctx := dsig.New(s.opts.contextOptions()...)
	if err := ctx.SetCanonicalMethod(s.opts.canonicalMethod); err != nil {
		return nil, err
	}
	transforms := domain.TransformsFor(domain.TransformEnveloped, s.opts.canonicalMethod)
	if err := ctx.AddReference(&doc.Element, s.opts.digestAlgorithm, transforms, domain.ReferenceOptions{ForceURI: true}); err != nil {
		return nil, fmt.Errorf("add reference: %w", err)
	}
	if len(s.certs) > 0 {
		certOpts := domain.CertificateOptions{IssuerSerial: s.opts.issuerSerial}
		if err := ctx.AddCertificates(s.certs, certOpts); err != nil {
			return nil, fmt.Errorf("embed certificates: %w", err)
		}
	}
	if _, err := ctx.AppendSignature(root, s.opts.insertFirst); err != nil {
		return nil, err
	}
	if err := ctx.Sign(s.key, nil); err != nil {
		return nil, fmt.Errorf("sign XML: %w", err)
	}

	signed, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("serialize signed XML: %w", err)
	}
	s.opts.logger.Debug("document signed",
		zap.String("algorithm", domain.AlgorithmName(s.key.Algorithm())),
		zap.String("root", root.FullTag()),
		zap.Int("certificates", len(s.certs)),
	)
	return signed, nil
}

var _ ports.DocumentSigner = (*DocumentSigner)(nil)
