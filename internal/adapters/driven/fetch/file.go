package fetch

import (
	"context"
	"errors"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/philiph/xmldsig/internal/core/domain"
	"github.com/philiph/xmldsig/internal/core/ports"
)

// FileFetcher reads file:// URIs and relative paths from a base directory.
// Paths that resolve outside the directory are rejected.
type FileFetcher struct {
	root    string
	maxSize int64
	logger  *zap.Logger
}

// NewFileFetcher creates a FileFetcher confined to baseDir.
func NewFileFetcher(baseDir string, opts ...Option) (*FileFetcher, error) {
	root, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New("fetch: base path is not a directory: " + root)
	}
	o := newOptions(opts)
	return &FileFetcher{root: root, maxSize: o.maxSize, logger: o.logger}, nil
}

// Fetch implements ports.ResourceFetcher.
func (f *FileFetcher) Fetch(_ context.Context, uri string) ([]byte, error) {
	path, err := f.resolve(uri)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, domain.ErrExternalResourceFetchFailed.With(uri, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, f.maxSize+1))
	if err != nil {
		return nil, domain.ErrExternalResourceFetchFailed.With(uri, err)
	}
	if int64(len(data)) > f.maxSize {
		return nil, domain.ErrExternalResourceFetchFailed.Withf("%s: exceeds max size %d bytes", uri, f.maxSize)
	}

	f.logger.Debug("external resource read", zap.String("path", path), zap.Int("bytes", len(data)))
	return data, nil
}

// resolve maps uri to a path under the base directory.
func (f *FileFetcher) resolve(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", domain.ErrExternalResourceFetchFailed.With(uri, err)
	}

	var rel string
	switch u.Scheme {
	case "file":
		if u.Host != "" && u.Host != "localhost" {
			return "", domain.ErrExternalResourceFetchFailed.Withf("remote file host %q", u.Host)
		}
		rel = u.Path
	case "":
		rel = u.Path
	default:
		return "", domain.ErrExternalResourceFetchFailed.Withf("unsupported scheme %q", u.Scheme)
	}
	if rel == "" {
		return "", domain.ErrExternalResourceFetchFailed.Withf("empty path in %q", uri)
	}

	var path string
	if filepath.IsAbs(filepath.FromSlash(rel)) {
		path = filepath.Clean(filepath.FromSlash(rel))
	} else {
		path = filepath.Join(f.root, filepath.FromSlash(rel))
	}
	if path != f.root && !strings.HasPrefix(path, f.root+string(filepath.Separator)) {
		return "", domain.ErrExternalResourceFetchFailed.Withf("%q escapes base directory", uri)
	}
	return path, nil
}

var _ ports.ResourceFetcher = (*FileFetcher)(nil)
