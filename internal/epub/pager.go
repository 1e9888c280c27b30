package epub

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/justyntemme/tome-t/internal/logging"
)

const (
	baseFontSize   = 16
	minColumnWidth = 20
)

// ColumnWidth converts a font size into a text column width for a terminal
// of cols cells. The base size fills the terminal; larger sizes narrow the
// column the way a bigger font fits fewer characters per line.
func ColumnWidth(cols, fontSize int) int {
	if fontSize <= 0 {
		fontSize = baseFontSize
	}
	w := cols * baseFontSize / fontSize
	return max(min(w, cols), min(minColumnWidth, cols))
}

type line struct {
	text string
	loc  Location
}

// Pager lays a book out into screens of wrapped lines and keeps the current
// screen. Each chapter starts on a new screen. It implements viewer.Surface.
type Pager struct {
	book   *Book
	width  int
	height int
	logger *slog.Logger

	lines   []line
	screens []int // index into lines of each screen's first line
	current int
}

// NewPager lays out book for a width x height text area
func NewPager(book *Book, width, height int, logger *slog.Logger) *Pager {
	p := &Pager{book: book, logger: logging.OrDiscard(logger)}
	p.layout(width, height)
	return p
}

// Resize re-wraps the book, keeping the current location on screen
func (p *Pager) Resize(width, height int) {
	if width == p.width && height == p.height {
		return
	}
	loc := p.CurrentLocation()
	p.layout(width, height)
	p.current = p.screenOf(loc)
}

func (p *Pager) layout(width, height int) {
	p.width = max(width, 1)
	p.height = max(height, 1)
	p.lines = p.lines[:0]
	p.screens = p.screens[:0]

	for spine, ch := range p.book.Chapters {
		start := len(p.lines)
		offset := 0
		for i, para := range ch.Paragraphs {
			if i > 0 {
				p.lines = append(p.lines, line{loc: Location{Spine: spine, Offset: offset}})
				offset += 2
			}
			p.lines = append(p.lines, wrap(para, spine, offset, p.width)...)
			offset += len([]rune(para))
		}
		if len(p.lines) == start {
			p.lines = append(p.lines, line{loc: Location{Spine: spine}})
		}
		for s := start; s < len(p.lines); s += p.height {
			p.screens = append(p.screens, s)
		}
	}
	p.current = min(p.current, len(p.screens)-1)
}

// wrap breaks a paragraph into lines no wider than width display cells,
// recording the rune offset each line starts at
func wrap(para string, spine, base, width int) []line {
	runes := []rune(para)
	var out []line
	var b strings.Builder
	lineW := 0
	lineStart := -1

	flush := func() {
		if lineStart >= 0 {
			out = append(out, line{text: b.String(), loc: Location{Spine: spine, Offset: base + lineStart}})
		}
		b.Reset()
		lineW = 0
		lineStart = -1
	}

	i := 0
	for i < len(runes) {
		if runes[i] == ' ' {
			i++
			continue
		}
		j := i
		for j < len(runes) && runes[j] != ' ' {
			j++
		}
		word := string(runes[i:j])
		ww := runewidth.StringWidth(word)

		if lineW > 0 && lineW+1+ww > width {
			flush()
		}
		// Words wider than the column are hard broken
		for ww > width {
			head := runewidth.Truncate(word, width, "")
			if head == "" {
				head = string([]rune(word)[:1])
			}
			n := len([]rune(head))
			out = append(out, line{text: head, loc: Location{Spine: spine, Offset: base + i}})
			i += n
			word = string([]rune(word)[n:])
			ww = runewidth.StringWidth(word)
		}
		if word == "" {
			i = j
			continue
		}
		if lineW > 0 {
			b.WriteByte(' ')
			lineW++
		} else {
			lineStart = i
		}
		b.WriteString(word)
		lineW += ww
		i = j
	}
	flush()
	return out
}

// Screens returns the number of screens in the layout
func (p *Pager) Screens() int {
	return len(p.screens)
}

// Screen returns the current screen index
func (p *Pager) Screen() int {
	return p.current
}

// Width returns the column width of the layout
func (p *Pager) Width() int {
	return p.width
}

// Lines returns the text lines of the current screen
func (p *Pager) Lines() []string {
	if len(p.screens) == 0 {
		return nil
	}
	start := p.screens[p.current]
	end := len(p.lines)
	if p.current+1 < len(p.screens) {
		end = p.screens[p.current+1]
	}
	out := make([]string, 0, end-start)
	for _, l := range p.lines[start:end] {
		out = append(out, l.text)
	}
	return out
}

// ChapterTitle returns the title of the chapter on screen
func (p *Pager) ChapterTitle() string {
	loc := p.CurrentLocation()
	if loc.Spine < len(p.book.Chapters) {
		return p.book.Chapters[loc.Spine].Title
	}
	return ""
}

// CurrentLocation returns the location of the first line on screen
func (p *Pager) CurrentLocation() Location {
	if len(p.screens) == 0 {
		return Location{}
	}
	return p.lines[p.screens[p.current]].loc
}

// Next moves one screen forward
func (p *Pager) Next() (string, bool) {
	if p.current+1 >= len(p.screens) {
		return "", false
	}
	p.current++
	return p.CurrentLocation().Token(), true
}

// Prev moves one screen back
func (p *Pager) Prev() (string, bool) {
	if p.current == 0 {
		return "", false
	}
	p.current--
	return p.CurrentLocation().Token(), true
}

// Display shows the screen containing token and returns the token of that
// screen's start. Unparseable tokens show the beginning of the book.
func (p *Pager) Display(token string) string {
	loc, err := ParseToken(token)
	if err != nil {
		p.logger.Warn("cannot display location", "token", token, "err", err)
		loc = Location{}
	}
	p.current = p.screenOf(loc)
	return p.CurrentLocation().Token()
}

func (p *Pager) screenOf(loc Location) int {
	i := sort.Search(len(p.screens), func(i int) bool {
		return loc.Before(p.lines[p.screens[i]].loc)
	})
	return max(i-1, 0)
}
