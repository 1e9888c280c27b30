package epub

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strconv"

	"github.com/justyntemme/tome-t/internal/logging"
)

// ChunkSize is the number of characters between generated locations
const ChunkSize = 1024

// Location addresses a rune offset inside a spine item
type Location struct {
	Spine  int
	Offset int
}

// Before reports whether l comes before o in reading order
func (l Location) Before(o Location) bool {
	if l.Spine != o.Spine {
		return l.Spine < o.Spine
	}
	return l.Offset < o.Offset
}

// Token renders the location as a CFI-shaped string, the format the server
// stores as currentPosition for EPUBs
func (l Location) Token() string {
	return fmt.Sprintf("epubcfi(/6/%d!/4/2:%d)", 2*(l.Spine+1), l.Offset)
}

var (
	cfiRe     = regexp.MustCompile(`^epubcfi\(/6/(\d+)(?:\[[^\]]*\])?!(.*)\)$`)
	cfiPathRe = regexp.MustCompile(`^/4/2:(\d+)$`)
)

// ParseToken parses a location token. CFIs written by other readers resolve
// to the start of their spine item.
func ParseToken(token string) (Location, error) {
	m := cfiRe.FindStringSubmatch(token)
	if m == nil {
		return Location{}, fmt.Errorf("invalid location %q", token)
	}
	step, err := strconv.Atoi(m[1])
	if err != nil || step < 2 {
		return Location{}, fmt.Errorf("invalid spine step in %q", token)
	}
	loc := Location{Spine: step/2 - 1}
	if pm := cfiPathRe.FindStringSubmatch(m[2]); pm != nil {
		loc.Offset, _ = strconv.Atoi(pm[1])
	}
	return loc, nil
}

// Locations is the generated location index of a book. Percentages are
// index/(count-1) over locations cut every ChunkSize characters.
type Locations struct {
	locs   []Location
	logger *slog.Logger
}

// GenerateLocations builds the index for book. Every chapter contributes at
// least its start, so each spine item stays addressable.
func GenerateLocations(book *Book, chunk int, logger *slog.Logger) *Locations {
	if chunk <= 0 {
		chunk = ChunkSize
	}
	var locs []Location
	for i, ch := range book.Chapters {
		n := ch.Len()
		for off := 0; off == 0 || off < n; off += chunk {
			locs = append(locs, Location{Spine: i, Offset: off})
		}
	}
	return &Locations{locs: locs, logger: logging.OrDiscard(logger)}
}

// Len returns the number of locations
func (l *Locations) Len() int {
	return len(l.locs)
}

// At returns the i-th location
func (l *Locations) At(i int) Location {
	return l.locs[i]
}

// IndexOf returns the index of the last location at or before loc
func (l *Locations) IndexOf(loc Location) int {
	i := sort.Search(len(l.locs), func(i int) bool {
		return loc.Before(l.locs[i])
	})
	return max(i-1, 0)
}

// PercentageFromToken maps a token to [0, 1]. Unparseable tokens map to 0.
func (l *Locations) PercentageFromToken(token string) float64 {
	if len(l.locs) < 2 {
		return 0
	}
	loc, err := ParseToken(token)
	if err != nil {
		l.logger.Warn("unparseable location", "token", token, "err", err)
		return 0
	}
	return float64(l.IndexOf(loc)) / float64(len(l.locs)-1)
}

// TokenFromPercentage maps p in [0, 1] to the token of a generated location
func (l *Locations) TokenFromPercentage(p float64) string {
	if len(l.locs) == 0 {
		return Location{}.Token()
	}
	p = min(max(p, 0), 1)
	// The epsilon keeps float noise in idx/(n-1)*(n-1) from rounding up
	idx := int(math.Ceil(float64(len(l.locs)-1)*p - 1e-9))
	return l.locs[min(idx, len(l.locs)-1)].Token()
}
