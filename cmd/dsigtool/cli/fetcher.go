package cli

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/philiph/xmldsig"
)

// newFetcher builds the external reference policy described by cfg. It
// returns nil when external references are disabled.
func newFetcher(cfg FetchConfig, logger *zap.Logger) (xmldsig.ResourceFetcher, error) {
	if !cfg.AllowHTTP && cfg.BaseDir == "" {
		return nil, nil
	}

	opts := []xmldsig.FetchOption{
		xmldsig.WithFetchLogger(logger),
		xmldsig.WithFetchUserAgent("dsigtool/" + xmldsig.Version),
	}
	if cfg.MaxSize > 0 {
		opts = append(opts, xmldsig.WithFetchMaxSize(cfg.MaxSize))
	}
	timeout, err := parseDuration("fetch.timeout", cfg.Timeout)
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		opts = append(opts, xmldsig.WithFetchHTTPClient(&http.Client{Timeout: timeout}))
	}

	routes := map[string]xmldsig.ResourceFetcher{}
	if cfg.AllowHTTP {
		httpFetcher := xmldsig.NewHTTPFetcher(opts...)
		routes["http"] = httpFetcher
		routes["https"] = httpFetcher
	}
	if cfg.BaseDir != "" {
		fileFetcher, err := xmldsig.NewFileFetcher(cfg.BaseDir, opts...)
		if err != nil {
			return nil, err
		}
		routes["file"] = fileFetcher
		routes[""] = fileFetcher
	}

	var fetcher xmldsig.ResourceFetcher = xmldsig.NewSchemeRouter(routes)

	ttl, err := parseDuration("fetch.cache_ttl", cfg.CacheTTL)
	if err != nil {
		return nil, err
	}
	if ttl > 0 {
		fetcher = xmldsig.NewCachingFetcher(fetcher, ttl, opts...)
	}
	return fetcher, nil
}
