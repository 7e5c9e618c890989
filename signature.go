package xmldsig

import (
	"github.com/philiph/xmldsig/internal/adapters/driven/keys"
	"github.com/philiph/xmldsig/internal/adapters/driven/signature"
	"github.com/philiph/xmldsig/internal/core/ports"
)

// SignatureVerifier verifies enveloped signatures on whole documents and
// returns only the signed content.
type SignatureVerifier = ports.SignatureVerifier

// DocumentSigner adds an enveloped signature to whole documents.
type DocumentSigner = ports.DocumentSigner

// Re-export document signature adapters. Their options are distinct from
// the engine's Option and carry a Document prefix.
type XMLDocumentSigner = signature.DocumentSigner
type XMLVerifier = signature.Verifier
type DocumentOption = signature.Option
type Clock = signature.Clock
type RealClock = signature.RealClock

var (
	NewDocumentSigner = signature.NewDocumentSigner
	NewVerifier       = signature.NewVerifier

	WithDocumentDigestAlgorithm = signature.WithDigestAlgorithm
	WithDocumentCanonicalMethod = signature.WithCanonicalMethod
	WithDocumentPrefix          = signature.WithPrefix
	WithDocumentIssuerSerial    = signature.WithIssuerSerial
	WithDocumentInsertFirst     = signature.WithInsertFirst
	WithDocumentIDAttributes    = signature.WithIDAttributes
	WithDocumentIDNamespaces    = signature.WithIDNamespaces
	WithDocumentFetcher         = signature.WithResourceFetcher
	WithDocumentLogger          = signature.WithLogger
	WithDocumentMetrics         = signature.WithMetricsRecorder
	WithDocumentClock           = signature.WithClock
)

// Re-export key adapters
type RSAKey = keys.RSAKey
type ECDSAKey = keys.ECDSAKey
type HMACKey = keys.HMACKey
type KeyStore = keys.KeyStore

var (
	NewRSAKey          = keys.NewRSAKey
	NewRSAPublicKey    = keys.NewRSAPublicKey
	NewECDSAKey        = keys.NewECDSAKey
	NewECDSAPublicKey  = keys.NewECDSAPublicKey
	NewHMACKey         = keys.NewHMACKey
	NewSigningKey      = keys.NewSigningKey
	NewVerificationKey = keys.NewVerificationKey
	DefaultAlgorithm   = keys.DefaultAlgorithm
	NewKeyStore        = keys.NewKeyStore
	FromKeyStore       = keys.FromKeyStore
	FromTLSCertificate = keys.FromTLSCertificate
	LoadCertificates   = keys.LoadCertificates
	ParseCertificates  = keys.ParseCertificates
	LoadPrivateKey     = keys.LoadPrivateKey
	ParsePrivateKey    = keys.ParsePrivateKey
)

var (
	_ SignatureVerifier = (*XMLVerifier)(nil)
	_ DocumentSigner    = (*XMLDocumentSigner)(nil)
)
