// Package fetch provides ports.ResourceFetcher implementations for
// dereferencing external Reference URIs.
//
// None of these are installed by default. A caller that wants external
// references resolved picks a policy explicitly, usually a SchemeRouter
// over an HTTPFetcher and a FileFetcher confined to one directory.
package fetch

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultMaxSize   = 10 * 1024 * 1024 // 10MB
	defaultUserAgent = "xmldsig/unknown"
)

// Option is a functional option for configuring fetchers.
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
	httpClient *http.Client
	userAgent  string
	maxSize    int64
	logger     *zap.Logger
	clock      Clock
}

func newOptions(opts []Option) *options {
	o := &options{
		userAgent: defaultUserAgent,
		maxSize:   defaultMaxSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.clock == nil {
		o.clock = RealClock{}
	}
	return o
}

// WithHTTPClient sets the client used by HTTPFetcher.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithUserAgent sets the User-Agent header sent by HTTPFetcher.
func WithUserAgent(userAgent string) Option {
	return func(o *options) {
		o.userAgent = userAgent
	}
}

// WithMaxSize limits the number of bytes a fetcher returns.
func WithMaxSize(size int64) Option {
	return func(o *options) {
		o.maxSize = size
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock sets a custom clock. Used for testing cache expiry without
// time.Sleep.
func WithClock(clock Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}
