package ports

import "context"

// ResourceFetcher retrieves the bytes of an external reference target.
//
// External dereferencing is a security sensitive policy point, so the
// signature engine only fetches through an explicitly configured fetcher.
type ResourceFetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}
