package dsig

import (
	"go.uber.org/zap"

	"github.com/philiph/xmldsig/internal/core/ports"
)

// Option configures a Context.
type Option func(*contextOptions)

type contextOptions struct {
	prefix       string
	idAttributes []string
	idNamespaces map[string]string
	fetcher      ports.ResourceFetcher
	logger       *zap.Logger
	metrics      ports.MetricsRecorder
}

func defaultContextOptions() contextOptions {
	return contextOptions{
		prefix:  "ds",
		logger:  zap.NewNop(),
		metrics: noopMetrics{},
	}
}

// WithPrefix sets the prefix used for elements the context creates. An
// empty prefix declares the signature namespace as the default namespace.
func WithPrefix(prefix string) Option {
	return func(o *contextOptions) {
		o.prefix = prefix
	}
}

// WithIDAttributes registers additional identifier attributes consulted
// when resolving "#id" references, e.g. "xml:id" or "wsu:Id". Prefixes
// other than xml must be bound with WithIDNamespaces.
func WithIDAttributes(names ...string) Option {
	return func(o *contextOptions) {
		o.idAttributes = append(o.idAttributes, names...)
	}
}

// WithIDNamespaces binds the prefixes used in WithIDAttributes.
func WithIDNamespaces(namespaces map[string]string) Option {
	return func(o *contextOptions) {
		if o.idNamespaces == nil {
			o.idNamespaces = make(map[string]string, len(namespaces))
		}
		for k, v := range namespaces {
			o.idNamespaces[k] = v
		}
	}
}

// WithResourceFetcher enables external reference URIs. Without a fetcher
// such references fail with ErrExternalResourceFetchFailed.
func WithResourceFetcher(f ports.ResourceFetcher) Option {
	return func(o *contextOptions) {
		o.fetcher = f
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *contextOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetricsRecorder sets the metrics recorder.
func WithMetricsRecorder(recorder ports.MetricsRecorder) Option {
	return func(o *contextOptions) {
		if recorder != nil {
			o.metrics = recorder
		}
	}
}

type noopMetrics struct{}

func (noopMetrics) RecordSign(string, bool)             {}
func (noopMetrics) RecordVerify(string, bool)           {}
func (noopMetrics) RecordReferenceValidation(bool, int) {}
func (noopMetrics) RecordExternalFetch(string, bool)    {}
