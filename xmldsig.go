package xmldsig

import (
	"github.com/philiph/xmldsig/internal/core/canonical"
	"github.com/philiph/xmldsig/internal/core/domain"
	"github.com/philiph/xmldsig/internal/core/dsig"
	"github.com/philiph/xmldsig/internal/core/ports"
)

// Re-export the signature engine
type Context = dsig.Context
type State = dsig.State
type Option = dsig.Option
type HashFactory = dsig.HashFactory

const (
	StateEmpty               = dsig.StateEmpty
	StateSignedInfoBuilt     = dsig.StateSignedInfoBuilt
	StateSigned              = dsig.StateSigned
	StateLocated             = dsig.StateLocated
	StateInfoCanonicalized   = dsig.StateInfoCanonicalized
	StateReferencesValidated = dsig.StateReferencesValidated
	StateVerified            = dsig.StateVerified
)

var (
	New                  = dsig.New
	Locate               = dsig.Locate
	LocateDocument       = dsig.LocateDocument
	AddCertificatesTo    = dsig.AddCertificatesTo
	SplitPEMCertificates = dsig.SplitPEMCertificates
	IssuerName           = dsig.IssuerName

	Digest             = dsig.Digest
	RegisterDigest     = dsig.RegisterDigest
	MustRegisterDigest = dsig.MustRegisterDigest
	SupportedDigests   = dsig.SupportedDigests
	IsDigestSupported  = dsig.IsDigestSupported

	WithPrefix          = dsig.WithPrefix
	WithIDAttributes    = dsig.WithIDAttributes
	WithIDNamespaces    = dsig.WithIDNamespaces
	WithResourceFetcher = dsig.WithResourceFetcher
	WithLogger          = dsig.WithLogger
	WithMetricsRecorder = dsig.WithMetricsRecorder
)

// Re-export ports implemented outside the engine
type Key = ports.Key
type ResourceFetcher = ports.ResourceFetcher
type MetricsRecorder = ports.MetricsRecorder

// Re-export domain types
type Reference = domain.Reference
type ReferenceOptions = domain.ReferenceOptions
type CertificateOptions = domain.CertificateOptions
type URIKind = domain.URIKind
type ValidatedNode = domain.ValidatedNode
type ValidatedNodes = domain.ValidatedNodes
type CanonicalMode = domain.CanonicalMode

type Transform = domain.Transform
type CanonicalizationTransform = domain.CanonicalizationTransform
type XPathFilterTransform = domain.XPathFilterTransform
type EnvelopedSignatureTransform = domain.EnvelopedSignatureTransform
type UnknownTransform = domain.UnknownTransform

var (
	DefaultReferenceOptions   = domain.DefaultReferenceOptions
	DefaultCertificateOptions = domain.DefaultCertificateOptions
	TransformFor              = domain.TransformFor
	TransformsFor             = domain.TransformsFor
	ParsePrefixList           = domain.ParsePrefixList
	ParseCanonicalMethod      = domain.ParseCanonicalMethod
	IsCanonicalMethod         = domain.IsCanonicalMethod
	AlgorithmName             = domain.AlgorithmName
	AlgorithmByName           = domain.AlgorithmByName
)

// Re-export canonicalization
type Canonicalizer = canonical.Canonicalizer
type CanonicalOptions = canonical.Options

var (
	Canonicalize         = canonical.Canonicalize
	CanonicalizeDocument = canonical.CanonicalizeDocument
	NewCanonicalizer     = canonical.NewCanonicalizer
)

// Algorithm identifiers
const (
	Namespace     = domain.Namespace
	DefaultPrefix = domain.DefaultPrefix

	C14N                     = domain.C14N
	C14NWithComments         = domain.C14NWithComments
	ExclusiveC14N            = domain.ExclusiveC14N
	ExclusiveC14NWithComment = domain.ExclusiveC14NWithComment

	DigestSHA1      = domain.DigestSHA1
	DigestSHA256    = domain.DigestSHA256
	DigestSHA384    = domain.DigestSHA384
	DigestSHA512    = domain.DigestSHA512
	DigestRIPEMD160 = domain.DigestRIPEMD160

	TransformEnveloped = domain.TransformEnveloped
	TransformXPath     = domain.TransformXPath

	RSASHA1     = domain.RSASHA1
	RSASHA256   = domain.RSASHA256
	RSASHA384   = domain.RSASHA384
	RSASHA512   = domain.RSASHA512
	ECDSASHA1   = domain.ECDSASHA1
	ECDSASHA256 = domain.ECDSASHA256
	ECDSASHA384 = domain.ECDSASHA384
	ECDSASHA512 = domain.ECDSASHA512
	HMACSHA1    = domain.HMACSHA1
	HMACSHA256  = domain.HMACSHA256
	HMACSHA384  = domain.HMACSHA384
	HMACSHA512  = domain.HMACSHA512
)
