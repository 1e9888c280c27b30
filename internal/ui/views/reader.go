package views

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/justyntemme/tome-t/internal/epub"
	"github.com/justyntemme/tome-t/internal/logging"
	"github.com/justyntemme/tome-t/internal/ui/styles"
	"github.com/justyntemme/tome-t/internal/viewer"
)

// Slider steps for reflowable books, as fractions of the book
const (
	scrubStep     = 0.01
	scrubJumpStep = 0.1
)

// EPUBLoader fetches the raw bytes of an EPUB
type EPUBLoader func(ctx context.Context) ([]byte, error)

// ReaderView displays reflowable books (EPUB) as screens of wrapped text
type ReaderView struct {
	title    string
	position string // saved location restored on open
	state    *viewer.Reflowable
	load     EPUBLoader
	input    turnInput
	panel    *OptionsPanel
	slider   progress.Model
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	book  *epub.Book
	pager *epub.Pager

	loading   bool
	err       error
	scrubbing bool

	width  int
	height int
}

// bookLoadedMsg is sent when the EPUB is fetched and parsed
type bookLoadedMsg struct {
	book *epub.Book
	err  error
}

// locationsMsg is sent when the location index is built
type locationsMsg struct {
	book *epub.Book
	locs *epub.Locations
}

// NewReaderView creates a reader for a book fetched by load. position is
// the saved location token, or "" to start at the beginning.
func NewReaderView(title, position string, state *viewer.Reflowable, load EPUBLoader, panel *OptionsPanel, cellW, cellH int, logger *slog.Logger) *ReaderView {
	logger = logging.OrDiscard(logger)
	return &ReaderView{
		title:    title,
		position: position,
		state:    state,
		load:     load,
		input:    newTurnInput(cellW, cellH, logger),
		panel:    panel,
		slider:   progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		logger:   logger,
		width:    80,
		height:   24,
	}
}

// Init implements View
func (v *ReaderView) Init() tea.Cmd {
	v.ctx, v.cancel = context.WithCancel(context.Background())
	v.state.Mount()
	v.loading = true
	return v.loadBook()
}

// Close ends the session; no reports are sent afterwards
func (v *ReaderView) Close() {
	v.state.Unmount()
	if v.cancel != nil {
		v.cancel()
	}
}

// CapturingInput implements InputCapturer
func (v *ReaderView) CapturingInput() bool {
	return v.panel.IsOpen() || v.scrubbing
}

// State returns the location state
func (v *ReaderView) State() *viewer.Reflowable {
	return v.state
}

// Update implements View
func (v *ReaderView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if v.panel.IsOpen() {
			changed, cmd := v.panel.Update(msg)
			if changed {
				v.applyOptions(v.panel.Options())
			}
			return v, cmd
		}
		return v.handleKeyMsg(msg)

	case tea.MouseMsg:
		return v.handleMouseMsg(msg)

	case tea.WindowSizeMsg:
		v.SetSize(msg.Width, msg.Height)
		return v, nil

	case bookLoadedMsg:
		return v.handleBookLoaded(msg)

	case locationsMsg:
		if msg.book == v.book {
			v.state.LocationsGenerated(msg.locs)
			v.logger.Debug("locations generated", "title", v.title, "count", msg.locs.Len())
		}
	}
	return v, nil
}

// handleKeyMsg processes key presses
func (v *ReaderView) handleKeyMsg(msg tea.KeyMsg) (View, tea.Cmd) {
	key := msg.String()

	if v.scrubbing {
		v.handleScrubKey(key)
		return v, nil
	}

	dir := v.state.Options().Direction
	if v.input.key(v.state, dir, key) {
		return v, nil
	}

	switch key {
	case "q", "esc":
		return v, Back()
	case "o":
		v.input.cancel()
		v.panel.Open(v.state.Options())
	case "s":
		if v.pager != nil {
			v.scrubbing = true
		}
	case "h":
		v.input.turn(v.state, dir, viewer.IntentLeft)
	case "l":
		v.input.turn(v.state, dir, viewer.IntentRight)
	case "n", " ", "pgdown", "j", "down":
		v.state.Advance(true)
	case "p", "pgup", "k", "up":
		v.state.Advance(false)
	case "g", "home":
		v.jumpTo(epub.Location{}.Token())
	case "G", "end":
		if v.book != nil {
			last := epub.Location{Spine: len(v.book.Chapters) - 1, Offset: math.MaxInt32}
			v.jumpTo(last.Token())
		}
	}
	return v, nil
}

// handleScrubKey moves the slider. Committing before the book is indexed
// leaves the document where it is.
func (v *ReaderView) handleScrubKey(key string) {
	switch key {
	case "left", "h":
		v.state.DragSlider(v.state.Slider() - scrubStep)
	case "right", "l":
		v.state.DragSlider(v.state.Slider() + scrubStep)
	case "H", "shift+left":
		v.state.DragSlider(v.state.Slider() - scrubJumpStep)
	case "L", "shift+right":
		v.state.DragSlider(v.state.Slider() + scrubJumpStep)
	case "enter":
		v.scrubbing = false
		v.state.CommitSlider(v.state.Slider())
	case "esc", "s":
		v.scrubbing = false
		v.state.DragSlider(v.state.Percentage())
	}
}

// handleMouseMsg turns screens on swipes and the wheel
func (v *ReaderView) handleMouseMsg(msg tea.MouseMsg) (View, tea.Cmd) {
	if v.panel.IsOpen() {
		v.input.cancel()
		return v, nil
	}
	v.input.mouse(v.state, v.state.Options().Direction, msg)
	return v, nil
}

// jumpTo shows the screen holding token as a reading action
func (v *ReaderView) jumpTo(token string) {
	if v.pager == nil {
		return
	}
	v.state.LocationChanged(v.pager.Display(token))
}

// applyOptions takes options saved in the panel. A font size change
// re-wraps the book around the current location without reporting it.
func (v *ReaderView) applyOptions(opts viewer.ViewerOptions) {
	relayout := opts.FontSize != v.state.Options().FontSize
	v.state.SetOptions(opts)
	if relayout {
		v.relayout()
	}
}

func (v *ReaderView) relayout() {
	if v.pager == nil {
		return
	}
	v.pager.Resize(v.textWidth(), v.textHeight())
	v.state.Restore(v.pager.CurrentLocation().Token())
}

// handleBookLoaded lays out the book, restores the saved position and starts
// indexing locations in the background
func (v *ReaderView) handleBookLoaded(msg bookLoadedMsg) (View, tea.Cmd) {
	v.loading = false
	if msg.err != nil {
		v.err = msg.err
		v.logger.Warn("open epub failed", "path", v.state.Path(), "err", msg.err)
		return v, nil
	}

	v.book = msg.book
	v.pager = epub.NewPager(msg.book, v.textWidth(), v.textHeight(), v.logger)
	v.state.Attach(v.pager)

	position := v.position
	if position == "" {
		position = epub.Location{}.Token()
	}
	v.state.Restore(position)

	return v, v.generateLocations(msg.book)
}

// loadBook fetches and parses the EPUB
func (v *ReaderView) loadBook() tea.Cmd {
	ctx, load := v.ctx, v.load
	return func() tea.Msg {
		data, err := load(ctx)
		if err != nil {
			return bookLoadedMsg{err: err}
		}
		book, err := epub.Open(data)
		if err != nil {
			return bookLoadedMsg{err: fmt.Errorf("open epub: %w", err)}
		}
		return bookLoadedMsg{book: book}
	}
}

// generateLocations builds the location index off the event loop
func (v *ReaderView) generateLocations(book *epub.Book) tea.Cmd {
	logger := v.logger
	return func() tea.Msg {
		return locationsMsg{book: book, locs: epub.GenerateLocations(book, epub.ChunkSize, logger)}
	}
}

func (v *ReaderView) textWidth() int {
	return epub.ColumnWidth(max(v.width-4, 1), v.state.Options().FontSize)
}

func (v *ReaderView) textHeight() int {
	return max(v.height-4, 1) // header, blank, slider, footer
}

// View implements View
func (v *ReaderView) View() string {
	if v.panel.IsOpen() {
		return v.panel.View(v.width, v.height)
	}

	var b strings.Builder
	b.WriteString(v.renderHeader() + "\n\n")

	contentHeight := v.textHeight()
	switch {
	case v.loading:
		b.WriteString(lipgloss.Place(v.width, contentHeight, lipgloss.Center, lipgloss.Center,
			styles.MutedText.Render("Loading book...")))
	case v.err != nil:
		b.WriteString(lipgloss.Place(v.width, contentHeight, lipgloss.Center, lipgloss.Center,
			styles.ErrorStyle.Render("Error: "+v.err.Error())))
	case v.pager != nil:
		text := lipgloss.NewStyle().
			Width(v.pager.Width()).
			Height(contentHeight).
			Render(strings.Join(v.pager.Lines(), "\n"))
		b.WriteString(lipgloss.PlaceHorizontal(v.width, lipgloss.Center, text))
	}

	b.WriteString("\n")
	b.WriteString(v.renderSlider() + "\n")
	b.WriteString(v.renderFooter())
	return b.String()
}

// renderHeader renders the reader header with proper truncation
func (v *ReaderView) renderHeader() string {
	maxTitleWidth := max(v.width/3, 10)
	titlePart := styles.ReaderHeader.Render(styles.TruncateText(v.title, maxTitleWidth))

	chapterPart := ""
	if v.pager != nil {
		chapter := styles.TruncateText(v.pager.ChapterTitle(), 30)
		chapterPart = styles.Help.Render(fmt.Sprintf(" %s (%d/%d)", chapter, v.pager.Screen()+1, v.pager.Screens()))
	}

	var progressPart string
	if v.state.State() == viewer.Indexed {
		progressPart = styles.ReaderProgress.Render(fmt.Sprintf("%.0f%%", v.state.Percentage()*100))
	} else {
		progressPart = styles.MutedText.Render("indexing…")
	}
	if v.state.Options().Direction == viewer.RTL {
		progressPart = styles.MutedText.Render("RTL ") + progressPart
	}

	left := titlePart + chapterPart
	gap := max(v.width-lipgloss.Width(left)-lipgloss.Width(progressPart), 0)
	return left + strings.Repeat(" ", gap) + progressPart
}

// renderSlider renders the scrub bar over the whole book
func (v *ReaderView) renderSlider() string {
	label := fmt.Sprintf(" %3.0f%%", v.state.Slider()*100)
	if v.scrubbing {
		label = styles.HelpKey.Render(fmt.Sprintf(" → %.0f%%", v.state.Slider()*100))
	}
	v.slider.Width = max(v.width-lipgloss.Width(label)-1, 10)
	return v.slider.ViewAs(v.state.Slider()) + label
}

// renderFooter renders the reader footer with consistent styling
func (v *ReaderView) renderFooter() string {
	var help []string
	if v.scrubbing {
		help = []string{
			styles.HelpKey.Render("←/→") + styles.Help.Render(" move"),
			styles.HelpKey.Render("H/L") + styles.Help.Render(" jump"),
			styles.HelpKey.Render("enter") + styles.Help.Render(" go"),
			styles.HelpKey.Render("esc") + styles.Help.Render(" cancel"),
		}
	} else {
		help = []string{
			styles.HelpKey.Render("←/→") + styles.Help.Render(" turn"),
			styles.HelpKey.Render("g/G") + styles.Help.Render(" start/end"),
			styles.HelpKey.Render("s") + styles.Help.Render(" slider"),
			styles.HelpKey.Render("o") + styles.Help.Render(" options"),
			styles.HelpKey.Render("q") + styles.Help.Render(" back"),
		}
	}
	return styles.FooterBar.Width(v.width).Render(strings.Join(help, "  "))
}

// SetSize implements View
func (v *ReaderView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.relayout()
}
