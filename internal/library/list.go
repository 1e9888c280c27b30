// Package library holds the browsing state behind the library view: which
// listing is shown, the pages merged so far and where an entry leads.
package library

import (
	"context"
	"log/slog"
	"path"
	"strings"

	"github.com/justyntemme/tome-t/internal/logging"
	"github.com/justyntemme/tome-t/pkg/models"
)

// Listing endpoints
const (
	EndpointAll    = "/api/all"
	EndpointRoot   = "/api/root"
	EndpointSearch = "/api/search"
)

// loadAhead is how close to the end the cursor must be to load the next page
const loadAhead = 5

// Lister fetches one page of a listing. *api.Client satisfies it.
type Lister interface {
	ListBooks(ctx context.Context, endpoint string, sort models.SortKey, order models.SortOrder, page int, q string) (*models.BooksResponse, error)
}

// Query selects a listing: its endpoint, order and search text
type Query struct {
	Endpoint string
	Sort     models.SortKey
	Order    models.SortOrder
	Q        string
}

// AllQuery lists the whole library by title
func AllQuery() Query {
	return Query{Endpoint: EndpointAll, Sort: models.SortTitle, Order: models.OrderAsc}
}

// FolderQuery lists one folder; "" or "/" is the library root
func FolderQuery(folder string) Query {
	q := AllQuery()
	q.Endpoint = EndpointRoot
	if folder = strings.Trim(folder, "/"); folder != "" {
		q.Endpoint += "/" + folder
	}
	return q
}

// SearchQuery searches the library for text
func SearchQuery(text string) Query {
	q := AllQuery()
	q.Endpoint = EndpointSearch
	q.Q = strings.TrimSpace(text)
	return q
}

// WithSort returns q ordered by key and order
func (q Query) WithSort(key models.SortKey, order models.SortOrder) Query {
	q.Sort = key
	q.Order = order
	return q
}

// Folder returns the folder a root query lists, or "" for other listings
func (q Query) Folder() string {
	if q.Endpoint == EndpointRoot {
		return "/"
	}
	if folder, ok := strings.CutPrefix(q.Endpoint, EndpointRoot+"/"); ok {
		return "/" + folder
	}
	return ""
}

// Title returns a heading for the listing
func (q Query) Title() string {
	switch q.Endpoint {
	case EndpointAll:
		return "All books"
	case EndpointSearch:
		return "Search"
	case EndpointRoot:
		return "Root"
	}
	if folder := q.Folder(); folder != "" {
		return path.Base(folder)
	}
	return q.Endpoint
}

// List is an infinite list: consecutive pages of one query merged in order.
// Changing the query starts over; a failed load stops further loading.
type List struct {
	query   Query
	books   []models.BookEntry
	page    int
	hasMore bool
	loading bool
	logger  *slog.Logger
}

// NewList creates an empty list for q, ready to load page 1
func NewList(q Query, logger *slog.Logger) *List {
	l := &List{logger: logging.OrDiscard(logger)}
	l.reset(q)
	return l
}

func (l *List) reset(q Query) {
	l.query = q
	l.books = nil
	l.page = 1
	l.hasMore = true
	l.loading = false
}

// SetQuery switches to q, clearing the list when it differs from the current one
func (l *List) SetQuery(q Query) bool {
	if q == l.query {
		return false
	}
	l.reset(q)
	return true
}

// Query returns the current query
func (l *List) Query() Query {
	return l.query
}

// Books returns the entries loaded so far
func (l *List) Books() []models.BookEntry {
	return l.books
}

// HasMore reports whether another page may exist
func (l *List) HasMore() bool {
	return l.hasMore
}

// Loading reports whether a page request is in flight
func (l *List) Loading() bool {
	return l.loading
}

// NearEnd reports whether the cursor is close enough to the end to load more
func (l *List) NearEnd(cursor int) bool {
	return cursor >= len(l.books)-loadAhead
}

// Next claims the next page to load. ok is false while a load is in flight
// or when the listing is exhausted.
func (l *List) Next() (q Query, page int, ok bool) {
	if l.loading || !l.hasMore {
		return Query{}, 0, false
	}
	l.loading = true
	return l.query, l.page, true
}

// Loaded applies a page result. Results for a query or page that is no
// longer current are dropped.
func (l *List) Loaded(q Query, page int, resp *models.BooksResponse) {
	if q != l.query || page != l.page {
		return
	}
	l.loading = false
	if resp == nil {
		l.hasMore = false
		return
	}
	l.books = append(l.books, resp.Books...)
	l.hasMore = resp.HasMore
	l.page++
}

// Failed records a failed load: the error is logged and loading stops
func (l *List) Failed(q Query, page int, err error) {
	if q != l.query || page != l.page {
		return
	}
	l.loading = false
	l.hasMore = false
	l.logger.Warn("failed to load books", "endpoint", q.Endpoint, "page", page, "err", err)
}

// Fetch loads one page of q
func Fetch(ctx context.Context, lister Lister, q Query, page int) (*models.BooksResponse, error) {
	return lister.ListBooks(ctx, q.Endpoint, q.Sort, q.Order, page, q.Q)
}
