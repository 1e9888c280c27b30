package library

import (
	"log/slog"
	"strconv"

	"github.com/justyntemme/tome-t/internal/logging"
	"github.com/justyntemme/tome-t/pkg/models"
)

// RouteKind says which screen opens an entry
type RouteKind int

const (
	RouteLibrary RouteKind = iota // stay on the library
	RouteFolder
	RouteReflowable
	RoutePaginated
)

// Route is where selecting a library entry leads
type Route struct {
	Kind        RouteKind
	Query       Query  // RouteFolder
	Format      string // RoutePaginated, RouteReflowable
	Path        string
	Title       string
	Position    string // RouteReflowable: saved location token
	InitialPage int    // RoutePaginated
}

// RouteFor resolves an entry. Unknown types are logged and keep the user
// on the library.
func RouteFor(entry models.BookEntry, logger *slog.Logger) Route {
	switch {
	case entry.IsFolder():
		return Route{Kind: RouteFolder, Query: FolderQuery(entry.Path), Path: entry.Path, Title: entry.Title}
	case entry.Type == models.BookTypeEPUB:
		return Route{
			Kind:     RouteReflowable,
			Format:   entry.Type.Format(),
			Path:     entry.Path,
			Title:    entry.Title,
			Position: entry.CurrentPosition,
		}
	case entry.Type.IsPaginated():
		return Route{
			Kind:        RoutePaginated,
			Format:      entry.Type.Format(),
			Path:        entry.Path,
			Title:       entry.Title,
			InitialPage: InitialPage(entry.CurrentPosition),
		}
	}
	logging.OrDiscard(logger).Warn("unknown book type", "type", entry.Type, "path", entry.Path)
	return Route{Kind: RouteLibrary}
}

// InitialPage parses a saved page position; anything unusable means page 1
func InitialPage(position string) int {
	n, err := strconv.Atoi(position)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
