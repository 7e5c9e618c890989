// Package signature adapts the signature engine to the document-level
// ports: DocumentSigner produces enveloped signatures over whole documents
// and Verifier checks them against trusted certificates.
package signature

import (
	"time"

	"go.uber.org/zap"

	"github.com/philiph/xmldsig/internal/core/domain"
	"github.com/philiph/xmldsig/internal/core/dsig"
	"github.com/philiph/xmldsig/internal/core/ports"
)

// Option is a functional option shared by DocumentSigner and Verifier.
type Option func(*options)

// Clock provides time functionality for testing.
type Clock interface {
	Now() time.Time
}

// RealClock uses the standard time package.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time { return time.Now() }

type options struct {
	digestAlgorithm string
	canonicalMethod string
	prefix          string
	issuerSerial    bool
	insertFirst     bool
	idAttributes    []string
	idNamespaces    map[string]string
	fetcher         ports.ResourceFetcher
	logger          *zap.Logger
	metrics         ports.MetricsRecorder
	clock           Clock
}

func newOptions(opts []Option) *options {
	o := &options{
		digestAlgorithm: domain.DigestSHA256,
		canonicalMethod: domain.ExclusiveC14N,
		prefix:          domain.DefaultPrefix,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.clock == nil {
		o.clock = RealClock{}
	}
	return o
}

// contextOptions translates adapter options for the engine.
func (o *options) contextOptions() []dsig.Option {
	opts := []dsig.Option{
		dsig.WithPrefix(o.prefix),
		dsig.WithLogger(o.logger),
	}
	if o.metrics != nil {
		opts = append(opts, dsig.WithMetricsRecorder(o.metrics))
	}
	if len(o.idAttributes) > 0 {
		opts = append(opts, dsig.WithIDAttributes(o.idAttributes...))
	}
	if len(o.idNamespaces) > 0 {
		opts = append(opts, dsig.WithIDNamespaces(o.idNamespaces))
	}
	if o.fetcher != nil {
		opts = append(opts, dsig.WithResourceFetcher(o.fetcher))
	}
	return opts
}

// WithDigestAlgorithm sets the reference digest. Default SHA-256.
func WithDigestAlgorithm(algorithm string) Option {
	return func(o *options) {
		o.digestAlgorithm = algorithm
	}
}

// WithCanonicalMethod sets the SignedInfo and reference canonicalization
// method. Default exclusive C14N.
func WithCanonicalMethod(method string) Option {
	return func(o *options) {
		o.canonicalMethod = method
	}
}

// WithPrefix sets the signature element prefix. Default "ds".
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithIssuerSerial emits X509IssuerSerial next to embedded certificates.
func WithIssuerSerial(enabled bool) Option {
	return func(o *options) {
		o.issuerSerial = enabled
	}
}

// WithInsertFirst places the signature as the first child of the document
// element instead of the last.
func WithInsertFirst(enabled bool) Option {
	return func(o *options) {
		o.insertFirst = enabled
	}
}

// WithIDAttributes registers extra identifier attributes for "#id"
// references. See dsig.WithIDAttributes.
func WithIDAttributes(names ...string) Option {
	return func(o *options) {
		o.idAttributes = append(o.idAttributes, names...)
	}
}

// WithIDNamespaces binds the prefixes used in WithIDAttributes.
func WithIDNamespaces(namespaces map[string]string) Option {
	return func(o *options) {
		o.idNamespaces = namespaces
	}
}

// WithResourceFetcher enables external reference resolution.
func WithResourceFetcher(f ports.ResourceFetcher) Option {
	return func(o *options) {
		o.fetcher = f
	}
}

// WithLogger sets the logger. On successful verification the algorithm,
// certificate subject and expiry are logged at Info.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetricsRecorder sets the metrics recorder.
func WithMetricsRecorder(recorder ports.MetricsRecorder) Option {
	return func(o *options) {
		o.metrics = recorder
	}
}

// WithClock sets the clock used for certificate validity checks.
func WithClock(clock Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}
