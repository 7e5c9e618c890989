package fetch

import (
	"context"
	"net/url"
	"strings"

	"github.com/philiph/xmldsig/internal/core/domain"
	"github.com/philiph/xmldsig/internal/core/ports"
)

// DenyFetcher refuses every URI. It makes an explicit "no external
// references" policy visible in configuration.
type DenyFetcher struct{}

// Fetch implements ports.ResourceFetcher.
func (DenyFetcher) Fetch(_ context.Context, uri string) ([]byte, error) {
	return nil, domain.ErrExternalResourceFetchFailed.Withf("external references are disabled: %q", uri)
}

// SchemeRouter dispatches to a fetcher by URI scheme. Relative URIs use
// the "" entry. Schemes without an entry are refused.
type SchemeRouter struct {
	routes map[string]ports.ResourceFetcher
}

// NewSchemeRouter creates a router. Scheme keys are case-insensitive.
func NewSchemeRouter(routes map[string]ports.ResourceFetcher) *SchemeRouter {
	r := &SchemeRouter{routes: make(map[string]ports.ResourceFetcher, len(routes))}
	for scheme, f := range routes {
		r.routes[strings.ToLower(scheme)] = f
	}
	return r
}

// Fetch implements ports.ResourceFetcher.
func (r *SchemeRouter) Fetch(ctx context.Context, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, domain.ErrExternalResourceFetchFailed.With(uri, err)
	}
	f, ok := r.routes[strings.ToLower(u.Scheme)]
	if !ok || f == nil {
		return nil, domain.ErrExternalResourceFetchFailed.Withf("no fetcher for scheme %q", u.Scheme)
	}
	return f.Fetch(ctx, uri)
}

var (
	_ ports.ResourceFetcher = DenyFetcher{}
	_ ports.ResourceFetcher = (*SchemeRouter)(nil)
)
