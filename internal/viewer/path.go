package viewer

import (
	"log/slog"
	"net/url"

	"github.com/justyntemme/tome-t/internal/logging"
)

// EncodedFilePath extracts the book path from a viewer source URL such as
// "/book/cbz?path=%2Fcomics%2Fa.cbz". A malformed URL yields "", which turns
// access and progress reporting into no-ops.
func EncodedFilePath(sourceURL string, logger *slog.Logger) string {
	u, err := url.Parse(sourceURL)
	if err != nil {
		logging.OrDiscard(logger).Warn("invalid viewer url", "url", sourceURL, "err", err)
		return ""
	}
	return u.Query().Get("path")
}

// SourceURL builds the viewer source URL for a format and book path
func SourceURL(format, path string) string {
	return "/book/" + format + "?path=" + url.QueryEscape(path)
}
