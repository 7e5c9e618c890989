package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/philiph/xmldsig/internal/core/domain"
	"github.com/philiph/xmldsig/internal/core/ports"
)

// HTTPFetcher retrieves http and https resources with a GET request.
type HTTPFetcher struct {
	httpClient *http.Client
	userAgent  string
	maxSize    int64
	logger     *zap.Logger
}

// NewHTTPFetcher creates an HTTPFetcher. The default client times out
// after 30 seconds and responses are capped at 10MB.
func NewHTTPFetcher(opts ...Option) *HTTPFetcher {
	o := newOptions(opts)
	return &HTTPFetcher{
		httpClient: o.httpClient,
		userAgent:  o.userAgent,
		maxSize:    o.maxSize,
		logger:     o.logger,
	}
}

// Fetch implements ports.ResourceFetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, domain.ErrExternalResourceFetchFailed.With(uri, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, domain.ErrExternalResourceFetchFailed.Withf("unsupported scheme %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, domain.ErrExternalResourceFetchFailed.With("create request", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, domain.ErrExternalResourceFetchFailed.With(uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.ErrExternalResourceFetchFailed.Withf("%s: HTTP %d", uri, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, domain.ErrExternalResourceFetchFailed.With("read response", err)
	}
	if int64(len(data)) > f.maxSize {
		return nil, domain.ErrExternalResourceFetchFailed.Withf("%s: exceeds max size %d bytes", uri, f.maxSize)
	}

	f.logger.Debug("external resource fetched",
		zap.String("uri", uri),
		zap.Int("bytes", len(data)),
	)
	return data, nil
}

var _ ports.ResourceFetcher = (*HTTPFetcher)(nil)
