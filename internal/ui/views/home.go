package views

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/justyntemme/tome-t/internal/library"
	"github.com/justyntemme/tome-t/internal/logging"
	"github.com/justyntemme/tome-t/internal/ui/styles"
	"github.com/justyntemme/tome-t/pkg/models"
)

// shelfRows is how many entries of each shelf the home screen shows
const shelfRows = 8

// HomeView shows the home shelves: books being read and recent arrivals
type HomeView struct {
	lister library.Lister
	logger *slog.Logger

	shelves []library.Shelf
	entries [][]models.BookEntry
	loaded  []bool
	errs    []error

	shelf  int // selected shelf
	cursor int // selected entry within the shelf

	width  int
	height int
}

// shelfLoadedMsg carries the first page of one shelf
type shelfLoadedMsg struct {
	index   int
	entries []models.BookEntry
	err     error
}

// NewHomeView creates the home screen
func NewHomeView(lister library.Lister, logger *slog.Logger) *HomeView {
	n := len(library.HomeShelves)
	return &HomeView{
		lister:  lister,
		logger:  logging.OrDiscard(logger),
		shelves: library.HomeShelves,
		entries: make([][]models.BookEntry, n),
		loaded:  make([]bool, n),
		errs:    make([]error, n),
		width:   80,
		height:  24,
	}
}

// Init implements View
func (v *HomeView) Init() tea.Cmd {
	cmds := make([]tea.Cmd, len(v.shelves))
	for i := range v.shelves {
		cmds[i] = v.loadShelf(i)
	}
	return tea.Batch(cmds...)
}

// Update implements View
func (v *HomeView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case shelfLoadedMsg:
		v.loaded[msg.index] = true
		v.errs[msg.index] = msg.err
		if msg.err != nil {
			v.logger.Warn("load shelf failed", "shelf", v.shelves[msg.index].Title, "err", msg.err)
			return v, nil
		}
		v.entries[msg.index] = msg.entries[:min(len(msg.entries), shelfRows)]
		v.clampCursor()

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			v.move(1)
		case "k", "up":
			v.move(-1)
		case "tab":
			v.shelf = (v.shelf + 1) % len(v.shelves)
			v.clampCursor()
		case "shift+tab":
			v.shelf = (v.shelf + len(v.shelves) - 1) % len(v.shelves)
			v.clampCursor()
		case "enter":
			if entry, ok := v.selected(); ok {
				return v, v.open(entry)
			}
		case "i":
			if entry, ok := v.selected(); ok {
				return v, func() tea.Msg {
					return ShowDetailsMsg{Entry: entry}
				}
			}
		case "l", "a":
			return v, Browse(library.AllQuery())
		case "f":
			return v, Browse(library.FolderQuery("/"))
		case "r":
			return v, v.Init()
		case "q":
			return v, tea.Quit
		}
	}
	return v, nil
}

func (v *HomeView) open(entry models.BookEntry) tea.Cmd {
	route := library.RouteFor(entry, v.logger)
	switch route.Kind {
	case library.RouteFolder:
		return Browse(route.Query)
	case library.RouteLibrary:
		return nil
	}
	return OpenRoute(route)
}

// move steps through the shelves as one list
func (v *HomeView) move(delta int) {
	cur := v.cursor + delta
	for cur < 0 && v.shelf > 0 {
		v.shelf--
		cur += len(v.entries[v.shelf])
	}
	for cur >= len(v.entries[v.shelf]) && v.shelf < len(v.shelves)-1 {
		cur -= len(v.entries[v.shelf])
		v.shelf++
	}
	v.cursor = cur
	v.clampCursor()
}

func (v *HomeView) clampCursor() {
	v.cursor = max(min(v.cursor, len(v.entries[v.shelf])-1), 0)
}

func (v *HomeView) selected() (models.BookEntry, bool) {
	entries := v.entries[v.shelf]
	if v.cursor >= len(entries) {
		return models.BookEntry{}, false
	}
	return entries[v.cursor], true
}

// loadShelf fetches one shelf
func (v *HomeView) loadShelf(i int) tea.Cmd {
	lister, shelf := v.lister, v.shelves[i]
	return func() tea.Msg {
		entries, err := library.LoadShelf(context.Background(), lister, shelf)
		return shelfLoadedMsg{index: i, entries: entries, err: err}
	}
}

// View implements View
func (v *HomeView) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleBar.Render(" tome-t ") + "\n\n")

	for i, shelf := range v.shelves {
		heading := styles.HelpKey.Render(shelf.Title)
		if i == v.shelf {
			heading = styles.DialogTitle.UnsetMarginBottom().Render("▸ " + shelf.Title)
		}
		b.WriteString(heading + "\n")

		switch {
		case !v.loaded[i]:
			b.WriteString(styles.MutedText.Render("  Loading...") + "\n")
		case v.errs[i] != nil:
			b.WriteString(styles.MutedText.Render("  Unavailable") + "\n")
		case len(v.entries[i]) == 0:
			b.WriteString(styles.MutedText.Render("  Nothing here yet") + "\n")
		}
		for j, entry := range v.entries[i] {
			b.WriteString(v.renderEntry(entry, i == v.shelf && j == v.cursor) + "\n")
		}
		b.WriteString("\n")
	}

	body := b.String()
	footer := v.renderFooter()
	gap := max(v.height-lipgloss.Height(body)-lipgloss.Height(footer), 0)
	return body + strings.Repeat("\n", gap) + footer
}

func (v *HomeView) renderEntry(entry models.BookEntry, selected bool) string {
	title := entry.Title
	if title == "" {
		title = path.Base(entry.Path)
	}
	suffix := ""
	if entry.Progress > 0 {
		suffix = fmt.Sprintf("  %3.0f%%", entry.Progress*100)
	}
	badge := FormatBadge(entry.Type)
	title = styles.TruncateText(title, max(v.width-8-lipgloss.Width(badge)-len(suffix), 1))

	if selected {
		return styles.ListItemSelected.Width(v.width).Render("▸ " + badge + " " + title + suffix)
	}
	return styles.ListItem.Render("  " + badge + " " + title + styles.MutedText.Render(suffix))
}

func (v *HomeView) renderFooter() string {
	help := []string{
		styles.HelpKey.Render("j/k") + styles.Help.Render(" nav"),
		styles.HelpKey.Render("tab") + styles.Help.Render(" shelf"),
		styles.HelpKey.Render("enter") + styles.Help.Render(" open"),
		styles.HelpKey.Render("i") + styles.Help.Render(" info"),
		styles.HelpKey.Render("l") + styles.Help.Render(" library"),
		styles.HelpKey.Render("f") + styles.Help.Render(" folders"),
		styles.HelpKey.Render("r") + styles.Help.Render(" refresh"),
		styles.HelpKey.Render("q") + styles.Help.Render(" quit"),
	}
	return styles.FooterBar.Width(v.width).Render(strings.Join(help, "  "))
}

// SetSize implements View
func (v *HomeView) SetSize(width, height int) {
	v.width = width
	v.height = height
}
