package views

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/justyntemme/tome-t/internal/config"
	"github.com/justyntemme/tome-t/internal/library"
	"github.com/justyntemme/tome-t/internal/logging"
	"github.com/justyntemme/tome-t/internal/ui/styles"
	"github.com/justyntemme/tome-t/pkg/models"
)

// LibraryView displays one listing as an infinite list
type LibraryView struct {
	lister library.Lister
	config *config.Config
	logger *slog.Logger

	list   *library.List
	cursor int
	offset int // For scrolling

	searchMode  bool
	searchInput textinput.Model
	spinner     spinner.Model

	width  int
	height int
}

// NewLibraryView creates a library view showing the whole library
func NewLibraryView(lister library.Lister, cfg *config.Config, logger *slog.Logger) *LibraryView {
	searchInput := textinput.New()
	searchInput.Placeholder = "Search books..."
	searchInput.CharLimit = 100
	searchInput.Width = 40

	logger = logging.OrDiscard(logger)
	return &LibraryView{
		lister:      lister,
		config:      cfg,
		logger:      logger,
		list:        library.NewList(library.AllQuery(), logger),
		searchInput: searchInput,
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		width:       80,
		height:      24,
	}
}

// booksLoadedMsg is sent when a listing page is loaded
type booksLoadedMsg struct {
	query library.Query
	page  int
	resp  *models.BooksResponse
	err   error
}

// Init implements View
func (v *LibraryView) Init() tea.Cmd {
	return tea.Batch(v.loadMore(), v.spinner.Tick)
}

// SetQuery switches the listing. It returns the command loading the first
// page when the listing changed.
func (v *LibraryView) SetQuery(q library.Query) tea.Cmd {
	if !v.list.SetQuery(q) {
		return nil
	}
	v.cursor = 0
	v.offset = 0
	return tea.Batch(v.loadMore(), v.spinner.Tick)
}

// CapturingInput implements InputCapturer
func (v *LibraryView) CapturingInput() bool {
	return v.searchMode
}

// Query returns the listing shown
func (v *LibraryView) Query() library.Query {
	return v.list.Query()
}

// Update implements View
func (v *LibraryView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if v.searchMode {
			return v.handleSearchKey(msg)
		}
		return v.handleKeyMsg(msg)

	case booksLoadedMsg:
		if msg.err != nil {
			v.list.Failed(msg.query, msg.page, msg.err)
			return v, nil
		}
		v.list.Loaded(msg.query, msg.page, msg.resp)
		// A short first page may not fill the screen; keep loading
		return v, v.maybeLoadMore()

	case spinner.TickMsg:
		if !v.list.Loading() {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *LibraryView) handleSearchKey(msg tea.KeyMsg) (View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.searchMode = false
		v.searchInput.Blur()
		return v, nil
	case "enter":
		v.searchMode = false
		v.searchInput.Blur()
		text := strings.TrimSpace(v.searchInput.Value())
		if text == "" {
			return v, v.SetQuery(library.AllQuery())
		}
		q := library.SearchQuery(text).WithSort(v.list.Query().Sort, v.list.Query().Order)
		return v, v.SetQuery(q)
	}
	var cmd tea.Cmd
	v.searchInput, cmd = v.searchInput.Update(msg)
	return v, cmd
}

func (v *LibraryView) handleKeyMsg(msg tea.KeyMsg) (View, tea.Cmd) {
	books := v.list.Books()

	switch msg.String() {
	case "j", "down":
		return v, v.moveCursor(1)
	case "k", "up":
		return v, v.moveCursor(-1)
	case "g", "home":
		v.cursor = 0
		v.offset = 0
	case "G", "end":
		return v, v.moveCursor(len(books))
	case "ctrl+d", "pgdown":
		return v, v.moveCursor(v.visibleLines() / 2)
	case "ctrl+u", "pgup":
		return v, v.moveCursor(-v.visibleLines() / 2)
	case "/":
		v.searchMode = true
		v.searchInput.SetValue(v.list.Query().Q)
		return v, tea.Batch(v.searchInput.Focus(), textinput.Blink)
	case "s":
		// Cycle sort key
		q := v.list.Query()
		i := slices.Index(models.SortKeys, q.Sort)
		next := models.SortKeys[(i+1)%len(models.SortKeys)]
		return v, v.SetQuery(q.WithSort(next, q.Order))
	case "S":
		// Toggle sort order
		q := v.list.Query()
		order := models.OrderDesc
		if q.Order == models.OrderDesc {
			order = models.OrderAsc
		}
		return v, v.SetQuery(q.WithSort(q.Sort, order))
	case "r":
		// Refresh
		q := v.list.Query()
		v.list.SetQuery(library.Query{})
		return v, v.SetQuery(q)
	case "f":
		return v, v.SetQuery(library.FolderQuery("/"))
	case "a":
		return v, v.SetQuery(library.AllQuery())
	case "backspace":
		if folder := v.list.Query().Folder(); folder != "" && folder != "/" {
			return v, v.SetQuery(library.FolderQuery(path.Dir(folder)))
		}
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
	case "T":
		// Cycle through themes
		name := styles.NextTheme()
		if v.config != nil {
			if err := v.config.SetTheme(name); err != nil {
				v.logger.Warn("save theme failed", "err", err)
			}
		}
	case "esc", "H":
		return v, SwitchTo(ViewHome)
	case "q":
		return v, tea.Quit
	}
	return v, nil
}

// open follows an entry: folders are browsed in place, books open a viewer
func (v *LibraryView) open(entry models.BookEntry) tea.Cmd {
	route := library.RouteFor(entry, v.logger)
	switch route.Kind {
	case library.RouteFolder:
		return v.SetQuery(route.Query.WithSort(v.list.Query().Sort, v.list.Query().Order))
	case library.RouteLibrary:
		return nil
	}
	return OpenRoute(route)
}

func (v *LibraryView) selected() (models.BookEntry, bool) {
	books := v.list.Books()
	if v.cursor < 0 || v.cursor >= len(books) {
		return models.BookEntry{}, false
	}
	return books[v.cursor], true
}

// moveCursor moves the cursor and loads the next page near the end
func (v *LibraryView) moveCursor(delta int) tea.Cmd {
	n := len(v.list.Books())
	v.cursor = max(min(v.cursor+delta, n-1), 0)
	v.updateOffset()
	return v.maybeLoadMore()
}

func (v *LibraryView) maybeLoadMore() tea.Cmd {
	if !v.list.NearEnd(max(v.cursor, v.offset+v.visibleLines()-1)) {
		return nil
	}
	return v.loadMore()
}

// loadMore requests the next page if one may exist and none is in flight
func (v *LibraryView) loadMore() tea.Cmd {
	q, page, ok := v.list.Next()
	if !ok {
		return nil
	}
	lister := v.lister
	load := func() tea.Msg {
		resp, err := library.Fetch(context.Background(), lister, q, page)
		return booksLoadedMsg{query: q, page: page, resp: resp, err: err}
	}
	return tea.Batch(load, v.spinner.Tick)
}

func (v *LibraryView) updateOffset() {
	visible := v.visibleLines()
	if v.cursor < v.offset {
		v.offset = v.cursor
	}
	if v.cursor >= v.offset+visible {
		v.offset = v.cursor - visible + 1
	}
}

func (v *LibraryView) visibleLines() int {
	lines := v.height - 4 // header, footer, spacing
	if v.searchMode {
		lines -= 3
	}
	return max(lines, 1)
}

// View implements View
func (v *LibraryView) View() string {
	var b strings.Builder

	b.WriteString(v.renderHeader() + "\n")

	if v.searchMode {
		b.WriteString(styles.InputFieldFocused.Render(v.searchInput.View()) + "\n")
	}

	books := v.list.Books()
	if len(books) == 0 {
		msg := styles.MutedText.Render("No books found")
		if v.list.Loading() {
			msg = v.spinner.View() + styles.MutedText.Render(" Loading books...")
		}
		b.WriteString(lipgloss.Place(v.width, v.height-4, lipgloss.Center, lipgloss.Center, msg))
		return b.String()
	}

	visible := v.visibleLines()
	end := min(v.offset+visible, len(books))
	for i := v.offset; i < end; i++ {
		b.WriteString(v.renderEntryLine(books[i], i == v.cursor) + "\n")
	}
	for i := end - v.offset; i < visible; i++ {
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.renderFooter())
	return b.String()
}

// SetSize implements View
func (v *LibraryView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.searchInput.Width = min(40, max(width-10, 10))
	v.updateOffset()
}

// renderHeader renders the header bar
func (v *LibraryView) renderHeader() string {
	q := v.list.Query()

	titleText := " " + q.Title() + " "
	if folder := q.Folder(); folder != "" {
		titleText = " " + folder + " "
	}
	if q.Q != "" {
		titleText = " Search: " + q.Q + " "
	}
	title := styles.TitleBar.Render(styles.TruncateText(titleText, max(v.width/2, 10)))

	sortDir := "↑"
	if q.Order == models.OrderDesc {
		sortDir = "↓"
	}
	sortInfo := styles.Help.Render(fmt.Sprintf(" Sort: %s %s ", q.Sort.Label(), sortDir))

	count := fmt.Sprintf(" %d", len(v.list.Books()))
	if v.list.HasMore() {
		count += "+"
	}
	count += " "
	right := styles.Help.Render(count)
	if v.list.Loading() {
		right = v.spinner.View() + right
	}

	left := title + sortInfo
	gap := max(v.width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return left + strings.Repeat(" ", gap) + right
}

// renderEntryLine renders a single entry line
func (v *LibraryView) renderEntryLine(entry models.BookEntry, selected bool) string {
	badge := FormatBadge(entry.Type)

	line := entry.Title
	if line == "" {
		line = path.Base(entry.Path)
	}
	suffix := ""
	if !entry.IsFolder() && entry.Progress > 0 {
		suffix = fmt.Sprintf("  %3.0f%%", entry.Progress*100)
	}

	maxWidth := v.width - 6 - lipgloss.Width(badge) - lipgloss.Width(suffix)
	line = styles.TruncateText(line, max(maxWidth, 1))
	if entry.IsFolder() {
		line = styles.BookFolder.Render(line + "/")
	}

	if selected {
		return styles.ListItemSelected.Width(v.width).Render("▸ " + badge + " " + line + suffix)
	}
	return styles.ListItem.Render("  " + badge + " " + line + styles.MutedText.Render(suffix))
}

// renderFooter renders the footer help
func (v *LibraryView) renderFooter() string {
	help := []string{
		styles.HelpKey.Render("j/k") + styles.Help.Render(" nav"),
		styles.HelpKey.Render("enter") + styles.Help.Render(" open"),
		styles.HelpKey.Render("i") + styles.Help.Render(" info"),
		styles.HelpKey.Render("/") + styles.Help.Render(" search"),
		styles.HelpKey.Render("s/S") + styles.Help.Render(" sort"),
		styles.HelpKey.Render("f/a") + styles.Help.Render(" folders/all"),
	}
	if folder := v.list.Query().Folder(); folder != "" && folder != "/" {
		help = append(help, styles.HelpKey.Render("⌫")+styles.Help.Render(" up"))
	}
	help = append(help, styles.HelpKey.Render("q")+styles.Help.Render(" quit"))

	themeIndicator := styles.MutedText.Render(" [Theme: "+styles.CurrentTheme().Name+"] ") +
		styles.HelpKey.Render("T") + styles.Help.Render(" change")

	helpText := strings.Join(help, "  ")
	gap := max(v.width-lipgloss.Width(helpText)-lipgloss.Width(themeIndicator), 0)
	return helpText + strings.Repeat(" ", gap) + themeIndicator
}

// FormatBadge renders the short type badge shown before an entry
func FormatBadge(t models.BookType) string {
	switch {
	case t == models.BookTypeFolder:
		return styles.BadgeFolder.Render("DIR")
	case t == models.BookTypeEPUB:
		return styles.BadgeText.Render(string(t))
	case t.IsPaginated():
		return styles.BadgeImage.Render(fmt.Sprintf("%-4s", t))
	default:
		return styles.MutedText.Render(fmt.Sprintf("%-6s", "?"))
	}
}
