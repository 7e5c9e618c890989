package signature

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"time"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/philiph/xmldsig/internal/adapters/driven/keys"
	"github.com/philiph/xmldsig/internal/core/domain"
	"github.com/philiph/xmldsig/internal/core/dsig"
	"github.com/philiph/xmldsig/internal/core/ports"
)

// Verifier verifies signatures against a set of trusted certificates.
//
// The first certificate in KeyInfo must be one of the trusted ones. A
// signature without KeyInfo is accepted only when exactly one certificate
// is trusted. Several trusted certificates support signer key rollover.
type Verifier struct {
	certs []*x509.Certificate
	opts  *options
}

// NewVerifier creates a verifier with the given trust anchors.
func NewVerifier(certs []*x509.Certificate, opts ...Option) (*Verifier, error) {
	if len(certs) == 0 {
		return nil, domain.ErrInvalidKey.Withf("verifier needs at least one trusted certificate")
	}
	return &Verifier{certs: certs, opts: newOptions(opts)}, nil
}

// Verify validates the signature on the document and returns the
// validated XML bytes. See VerifyContext.
func (v *Verifier) Verify(data []byte) ([]byte, error) {
	return v.VerifyContext(context.Background(), data)
}

// VerifyContext validates the first signature in the document: every
// reference must validate and the signature value must verify under the
// trusted certificate's key.
//
// Only validated content is returned: the document element when a
// reference covers the whole document, otherwise the first element a
// reference points to. Callers must process the returned bytes rather
// than the input, which may carry unsigned content around the signed
// element.
func (v *Verifier) VerifyContext(ctx context.Context, data []byte) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, domain.SignatureError("failed to parse XML", err)
	}
	if doc.Root() == nil {
		return nil, domain.SignatureError("empty XML document", nil)
	}

	sig, err := dsig.LocateDocument(doc, v.opts.contextOptions()...)
	if err != nil {
		return nil, err
	}

	cert, err := v.signingCertificate(sig)
	if err != nil {
		return nil, err
	}
	algorithm, err := sig.LocateKey()
	if err != nil {
		return nil, err
	}
	key, err := keys.NewVerificationKey(algorithm, cert.PublicKey)
	if err != nil {
		return nil, err
	}

	if _, err := sig.CanonicalizeSignedInfo(); err != nil {
		return nil, err
	}
	if err := sig.ValidateReferences(ctx); err != nil {
		return nil, err
	}
	ok, err := sig.Verify(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.SignatureError("signature value does not match", nil)
	}

	v.opts.logger.Info("signature verified",
		zap.String("algorithm", domain.AlgorithmName(algorithm)),
		zap.String("cert_subject", cert.Subject.String()),
		zap.Time("cert_expiry", cert.NotAfter),
	)

	validated := validatedElement(doc, sig.ValidatedNodes())
	if validated == nil {
		return nil, domain.SignatureError("no validated element", nil)
	}

	// Re-serialize the validated element to prevent signature wrapping attacks
	out := etree.NewDocument()
	out.SetRoot(validated.Copy())
	result, err := out.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("serialize validated XML: %w", err)
	}
	return result, nil
}

// signingCertificate picks the certificate whose key verifies the
// signature and checks it is trusted and currently valid.
func (v *Verifier) signingCertificate(sig *dsig.Context) (*x509.Certificate, error) {
	embedded, err := sig.Certificates()
	if err != nil {
		return nil, err
	}

	var cert *x509.Certificate
	switch {
	case len(embedded) > 0:
		cert = embedded[0]
		if !v.trusted(cert) {
			return nil, domain.ErrInvalidKey.Withf("certificate %q is not trusted", cert.Subject.String())
		}
	case len(v.certs) == 1:
		cert = v.certs[0]
	default:
		return nil, domain.ErrInvalidKey.With("signature carries no certificate", errors.New("several trusted certificates configured"))
	}

	now := v.opts.clock.Now()
	if now.Before(cert.NotBefore) || now.After(cert.NotAfter) {
		return nil, domain.ErrInvalidKey.Withf("certificate %q is not valid at %s", cert.Subject.String(), now.Format(time.RFC3339))
	}
	return cert, nil
}

func (v *Verifier) trusted(cert *x509.Certificate) bool {
	for _, c := range v.certs {
		if c.Equal(cert) {
			return true
		}
	}
	return false
}

// validatedElement returns the document element when a reference covered
// the whole document, otherwise the first validated element.
func validatedElement(doc *etree.Document, nodes domain.ValidatedNodes) *etree.Element {
	for _, n := range nodes {
		if n.Target.IsDocument() || n.Target.Node == doc.Root() {
			return doc.Root()
		}
	}
	if len(nodes) > 0 {
		return nodes[0].Target.Node
	}
	return nil
}

var _ ports.SignatureVerifier = (*Verifier)(nil)
