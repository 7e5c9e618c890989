package xmldsig

import (
	"github.com/philiph/xmldsig/internal/adapters/driven/fetch"
)

// Re-export resource fetchers for external references
type HTTPFetcher = fetch.HTTPFetcher
type FileFetcher = fetch.FileFetcher
type CachingFetcher = fetch.CachingFetcher
type SchemeRouter = fetch.SchemeRouter
type DenyFetcher = fetch.DenyFetcher
type FetchOption = fetch.Option

var (
	NewHTTPFetcher    = fetch.NewHTTPFetcher
	NewFileFetcher    = fetch.NewFileFetcher
	NewCachingFetcher = fetch.NewCachingFetcher
	NewSchemeRouter   = fetch.NewSchemeRouter

	WithFetchHTTPClient = fetch.WithHTTPClient
	WithFetchUserAgent  = fetch.WithUserAgent
	WithFetchMaxSize    = fetch.WithMaxSize
	WithFetchLogger     = fetch.WithLogger
	WithFetchClock      = fetch.WithClock
)
