// Package pages loads page images for the paginated viewer from the server
// or a local comic archive, with a bounded cache and background prefetch.
package pages

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoPages is returned for an archive without any readable image entry
var ErrNoPages = errors.New("no pages found")

// Source yields the page count and raw page images of one book. Pages are 1-based.
type Source interface {
	PageCount(ctx context.Context) (int, error)
	Page(ctx context.Context, page int) ([]byte, error)
}

// PageFetcher is the part of the API client used by RemoteSource
type PageFetcher interface {
	PageCount(ctx context.Context, format, path string) (int, error)
	PageImage(ctx context.Context, format, path string, page int) ([]byte, string, error)
}

// RemoteSource reads pages rendered by the server (/book/cbr, /book/cbz, /book/pdf)
type RemoteSource struct {
	fetcher PageFetcher
	format  string
	path    string
}

// NewRemoteSource creates a source for the book at path in the given format
func NewRemoteSource(fetcher PageFetcher, format, path string) *RemoteSource {
	return &RemoteSource{fetcher: fetcher, format: format, path: path}
}

func (s *RemoteSource) PageCount(ctx context.Context) (int, error) {
	n, err := s.fetcher.PageCount(ctx, s.format, s.path)
	if err != nil {
		return 0, fmt.Errorf("page count: %w", err)
	}
	return n, nil
}

func (s *RemoteSource) Page(ctx context.Context, page int) ([]byte, error) {
	data, _, err := s.fetcher.PageImage(ctx, s.format, s.path, page)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page, err)
	}
	return data, nil
}
