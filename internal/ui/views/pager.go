package views

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/justyntemme/tome-t/internal/logging"
	"github.com/justyntemme/tome-t/internal/pages"
	"github.com/justyntemme/tome-t/internal/ui/styles"
	"github.com/justyntemme/tome-t/internal/ui/terminal"
	"github.com/justyntemme/tome-t/internal/viewer"
)

// Zoom levels available
var zoomLevels = []float64{1.0, 1.5, 2.0, 3.0, 4.0}

// Pan step as a fraction of the page
const panStep = 0.1

// PagerView displays image-based books (CBR, CBZ, PDF, local archives) one
// page or spread at a time
type PagerView struct {
	title  string
	state  *viewer.Paginated
	loader *pages.Loader
	input  turnInput
	panel  *OptionsPanel
	slider progress.Model
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// Display state: want is what is being loaded, composed is the loaded
	// spread and rendered its terminal encoding
	want     []int
	primary  viewer.Size
	composed image.Image
	spread   bool
	rendered string
	seq      int
	loading  bool
	err      error

	// Zoom and pan state
	zoomIndex int
	panX      float64
	panY      float64

	// Slider scrubbing
	scrubbing bool

	termMode terminal.ImageMode
	cellW    int
	cellH    int

	width  int
	height int
}

// pageCountMsg carries the fetched page count
type pageCountMsg struct {
	total int
	err   error
}

// pageImagesMsg carries the decoded images for one display request
type pageImagesMsg struct {
	pages []int // requested
	shown []int // loaded, matching imgs
	imgs  []image.Image
	err   error
}

// pageRenderedMsg carries the terminal encoding of a display
type pageRenderedMsg struct {
	seq int
	out string
	err error
}

// prefetchDoneMsg reports the end of a prefetch round
type prefetchDoneMsg struct {
	err error
}

// NewPagerView creates a page viewer over state and loader
func NewPagerView(title string, state *viewer.Paginated, loader *pages.Loader, panel *OptionsPanel, cellW, cellH int, logger *slog.Logger) *PagerView {
	logger = logging.OrDiscard(logger)
	return &PagerView{
		title:    title,
		state:    state,
		loader:   loader,
		input:    newTurnInput(cellW, cellH, logger),
		panel:    panel,
		slider:   progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		logger:   logger,
		panX:     0.5,
		panY:     0.5,
		termMode: terminal.DetectMode(),
		cellW:    cellW,
		cellH:    cellH,
		width:    80,
		height:   24,
	}
}

// Init implements View
func (v *PagerView) Init() tea.Cmd {
	v.ctx, v.cancel = context.WithCancel(context.Background())
	v.state.Mount()
	return tea.Batch(v.loadPageCount(), v.loadDisplay())
}

// Close ends the session: reports stop and prefetching is cancelled
func (v *PagerView) Close() {
	v.state.Unmount()
	if v.cancel != nil {
		v.cancel()
	}
	v.loader.Purge()
}

// ClearScreen returns the sequence removing this view's images
func (v *PagerView) ClearScreen() string {
	return terminal.ClearAll(v.termMode)
}

// CapturingInput implements InputCapturer
func (v *PagerView) CapturingInput() bool {
	return v.panel.IsOpen() || v.scrubbing
}

// State returns the page state
func (v *PagerView) State() *viewer.Paginated {
	return v.state
}

// Update implements View
func (v *PagerView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if v.panel.IsOpen() {
			changed, cmd := v.panel.Update(msg)
			if changed {
				return v, tea.Batch(cmd, v.applyOptions(v.panel.Options()))
			}
			return v, cmd
		}
		return v.handleKeyMsg(msg)

	case tea.MouseMsg:
		return v.handleMouseMsg(msg)

	case tea.WindowSizeMsg:
		v.SetSize(msg.Width, msg.Height)
		return v, v.render()

	case pageCountMsg:
		return v.handlePageCount(msg)

	case pageImagesMsg:
		return v.handlePageImages(msg)

	case pageRenderedMsg:
		if msg.seq != v.seq {
			return v, nil
		}
		v.loading = false
		if msg.err != nil {
			v.err = msg.err
			v.logger.Warn("render page failed", "pages", v.want, "err", msg.err)
			return v, nil
		}
		v.rendered = msg.out
		return v, nil

	case prefetchDoneMsg:
		if msg.err != nil {
			v.logger.Debug("prefetch stopped", "err", msg.err)
		}
	}
	return v, nil
}

// handleKeyMsg processes key presses
func (v *PagerView) handleKeyMsg(msg tea.KeyMsg) (View, tea.Cmd) {
	key := msg.String()

	if v.scrubbing {
		return v.handleScrubKey(key)
	}

	// Arrow keys always turn pages through the shell
	if v.input.key(v.state, v.state.Options().Direction, key) {
		return v, v.loadDisplay()
	}

	switch key {
	case "q", "esc":
		return v, Back()
	case "o":
		v.input.cancel()
		v.panel.Open(v.state.Options())
		return v, nil
	case "s":
		v.scrubbing = true
		return v, nil
	case "+", "=":
		if v.zoomIndex < len(zoomLevels)-1 {
			v.zoomIndex++
			return v, v.render()
		}
		return v, nil
	case "-", "_":
		if v.zoomIndex > 0 {
			v.zoomIndex--
			if v.zoomIndex == 0 {
				v.panX, v.panY = 0.5, 0.5
			}
			return v, v.render()
		}
		return v, nil
	case "0":
		v.resetZoomPan()
		return v, v.render()
	case "n", " ", "pgdown":
		return v, v.turn(true)
	case "p", "pgup":
		return v, v.turn(false)
	case "g", "home":
		v.state.First()
		return v, v.loadDisplay()
	case "G", "end":
		v.state.Last()
		return v, v.loadDisplay()
	}

	// When zoomed, hjkl pans; otherwise h/l follow the arrow keys
	if v.isZoomed() {
		switch key {
		case "h":
			v.panX = max(v.panX-panStep, 0)
		case "l":
			v.panX = min(v.panX+panStep, 1)
		case "k":
			v.panY = max(v.panY-panStep, 0)
		case "j":
			v.panY = min(v.panY+panStep, 1)
		default:
			return v, nil
		}
		return v, v.render()
	}

	switch key {
	case "h":
		return v, v.navigate(viewer.IntentLeft)
	case "l":
		return v, v.navigate(viewer.IntentRight)
	}
	return v, nil
}

// handleScrubKey moves the slider; only enter commits a page change
func (v *PagerView) handleScrubKey(key string) (View, tea.Cmd) {
	step := 1
	switch key {
	case "H", "L", "shift+left", "shift+right":
		step = max(v.state.SliderMax()/10, 1)
	}

	switch key {
	case "left", "h", "H", "shift+left":
		v.state.DragSlider(v.state.Slider() - step)
	case "right", "l", "L", "shift+right":
		v.state.DragSlider(v.state.Slider() + step)
	case "enter":
		v.scrubbing = false
		v.state.CommitSlider(v.state.Slider())
		return v, v.loadDisplay()
	case "esc", "s":
		v.scrubbing = false
		v.state.DragSlider(v.state.Current())
	}
	return v, nil
}

// handleMouseMsg turns pages on swipes and the wheel
func (v *PagerView) handleMouseMsg(msg tea.MouseMsg) (View, tea.Cmd) {
	if v.panel.IsOpen() {
		v.input.cancel()
		return v, nil
	}
	if v.input.mouse(v.state, v.state.Options().Direction, msg) {
		return v, v.loadDisplay()
	}
	return v, nil
}

func (v *PagerView) navigate(intent viewer.Intent) tea.Cmd {
	v.input.turn(v.state, v.state.Options().Direction, intent)
	return v.loadDisplay()
}

func (v *PagerView) turn(forward bool) tea.Cmd {
	v.state.Advance(forward)
	return v.loadDisplay()
}

func (v *PagerView) applyOptions(opts viewer.ViewerOptions) tea.Cmd {
	before := v.state.DisplayPages()
	v.state.SetOptions(opts)
	if slices.Equal(before, v.state.DisplayPages()) {
		return nil
	}
	return v.loadDisplay()
}

// handlePageCount records the total. A failed count is logged and the
// viewer keeps working with an unknown total.
func (v *PagerView) handlePageCount(msg pageCountMsg) (View, tea.Cmd) {
	if msg.err != nil {
		v.logger.Warn("page count failed", "path", v.state.Path(), "err", msg.err)
		return v, nil
	}
	before := v.state.DisplayPages()
	v.state.SetTotal(msg.total)
	if slices.Equal(before, v.state.DisplayPages()) {
		return v, v.prefetch()
	}
	return v, v.loadDisplay()
}

// handlePageImages fits and renders a loaded display. Results for pages that
// are no longer wanted are dropped.
func (v *PagerView) handlePageImages(msg pageImagesMsg) (View, tea.Cmd) {
	if !slices.Equal(msg.pages, v.want) {
		return v, nil
	}
	if msg.err != nil {
		v.loading = false
		v.err = msg.err
		v.logger.Warn("load page failed", "pages", msg.pages, "err", msg.err)
		return v, nil
	}

	primary := msg.imgs[0]
	if i := slices.Index(msg.shown, v.state.StandardPage()); i >= 0 {
		primary = msg.imgs[i]
	}
	b := primary.Bounds()
	v.primary = viewer.Size{Width: b.Dx(), Height: b.Dy()}
	v.state.Fit(v.primary, v.viewport())

	v.composed = pages.Compose(msg.imgs...)
	v.spread = len(msg.imgs) > 1
	v.err = nil
	return v, tea.Batch(v.render(), v.prefetch())
}

// loadDisplay starts loading the pages the state puts on screen
func (v *PagerView) loadDisplay() tea.Cmd {
	want := v.state.DisplayPages()
	if slices.Equal(want, v.want) && v.composed != nil && v.err == nil {
		return nil
	}
	v.want = want
	v.loading = true
	v.err = nil
	v.resetZoomPan()

	// Cached pages (usually prefetched) are shown without a round trip
	if msg, ok := v.cachedDisplay(want); ok {
		_, cmd := v.handlePageImages(msg)
		return cmd
	}

	ctx, loader, logger := v.ctx, v.loader, v.logger
	return func() tea.Msg {
		msg := pageImagesMsg{pages: want}
		for _, page := range want {
			img, err := loader.Load(ctx, page)
			if err != nil {
				// A spread still shows its other page
				logger.Warn("page unavailable", "page", page, "err", err)
				msg.err = err
				continue
			}
			msg.shown = append(msg.shown, page)
			msg.imgs = append(msg.imgs, img)
		}
		if len(msg.imgs) > 0 {
			msg.err = nil
		}
		return msg
	}
}

// cachedDisplay builds the display from the cache; ok is false when any
// page has to be fetched
func (v *PagerView) cachedDisplay(want []int) (pageImagesMsg, bool) {
	msg := pageImagesMsg{pages: want}
	for _, page := range want {
		img, ok := v.loader.Cached(page)
		if !ok {
			return pageImagesMsg{}, false
		}
		msg.shown = append(msg.shown, page)
		msg.imgs = append(msg.imgs, img)
	}
	return msg, true
}

// loadPageCount fetches the page count
func (v *PagerView) loadPageCount() tea.Cmd {
	ctx, loader := v.ctx, v.loader
	return func() tea.Msg {
		total, err := loader.PageCount(ctx)
		return pageCountMsg{total: total, err: err}
	}
}

// prefetch warms the cache around the current spread
func (v *PagerView) prefetch() tea.Cmd {
	want := v.state.PrefetchPages()
	if len(want) == 0 {
		return nil
	}
	ctx, loader := v.ctx, v.loader
	return func() tea.Msg {
		return prefetchDoneMsg{err: loader.Prefetch(ctx, want)}
	}
}

// render scales the composed display to the fit scale and encodes it
func (v *PagerView) render() tea.Cmd {
	if v.composed == nil {
		return nil
	}
	v.seq++
	seq := v.seq
	img, mode := v.composed, v.termMode
	scale := v.state.Scale()
	if v.spread {
		// Compose already normalized heights, so fit the composite as a whole
		vp := v.viewport()
		b := img.Bounds()
		scale = viewer.FitScale(viewer.Size{Width: b.Dx(), Height: b.Dy()}, false, vp)
	}
	zoom, panX, panY := v.currentZoom(), v.panX, v.panY

	return func() tea.Msg {
		out := pages.Scale(pages.Zoom(img, zoom, panX, panY), scale*zoom)
		s, err := terminal.Render(out, mode)
		return pageRenderedMsg{seq: seq, out: s, err: err}
	}
}

// viewport is the content area in pixels
func (v *PagerView) viewport() viewer.Size {
	w, h := terminal.PixelSize(v.width, v.contentHeight(), v.cellW, v.cellH)
	return viewer.Size{Width: w, Height: h}
}

func (v *PagerView) contentHeight() int {
	return max(v.height-3, 1) // header, slider, footer
}

func (v *PagerView) resetZoomPan() {
	v.zoomIndex = 0
	v.panX = 0.5
	v.panY = 0.5
}

func (v *PagerView) currentZoom() float64 {
	if v.zoomIndex >= 0 && v.zoomIndex < len(zoomLevels) {
		return zoomLevels[v.zoomIndex]
	}
	return 1.0
}

func (v *PagerView) isZoomed() bool {
	return v.zoomIndex > 0
}

// View implements View
func (v *PagerView) View() string {
	if v.panel.IsOpen() {
		return terminal.ClearAll(v.termMode) + v.panel.View(v.width, v.height)
	}

	var b strings.Builder
	b.WriteString(v.renderHeader() + "\n")

	contentHeight := v.contentHeight()
	placeholder := func(s string) string {
		return lipgloss.Place(v.width, contentHeight, lipgloss.Center, lipgloss.Center, s)
	}

	switch {
	case v.err != nil:
		b.WriteString(terminal.ClearPage(v.termMode))
		b.WriteString(placeholder(styles.ErrorStyle.Render("Error: " + v.err.Error())))
	case v.termMode == terminal.ModeNone:
		b.WriteString(placeholder(styles.MutedText.Render(fmt.Sprintf(
			"%s\n\nTerminal does not support images.\nSupported terminals: Kitty, iTerm2, or Sixel-capable terminals.",
			v.pageLabel()))))
	case v.rendered == "":
		b.WriteString(placeholder(styles.MutedText.Render(fmt.Sprintf("Loading %s...", strings.ToLower(v.pageLabel())))))
	default:
		b.WriteString(v.rendered)
	}

	b.WriteString("\n")
	b.WriteString(v.renderSlider() + "\n")
	b.WriteString(v.renderFooter())
	return b.String()
}

// pageLabel describes the pages on screen, e.g. "Pages 3-4 / 10"
func (v *PagerView) pageLabel() string {
	shown := slices.Clone(v.state.DisplayPages())
	slices.Sort(shown)
	total := "?"
	if v.state.Total() != viewer.UnknownTotal {
		total = fmt.Sprint(v.state.Total())
	}
	if len(shown) > 1 {
		return fmt.Sprintf("Pages %d-%d / %s", shown[0], shown[len(shown)-1], total)
	}
	return fmt.Sprintf("Page %d / %s", shown[0], total)
}

// renderHeader renders the header bar with proper truncation
func (v *PagerView) renderHeader() string {
	maxTitleWidth := 40
	if v.width > 0 && v.width/2 < maxTitleWidth {
		maxTitleWidth = v.width / 2
	}
	titlePart := styles.ReaderHeader.Render(styles.TruncateText(v.title, maxTitleWidth))

	opts := v.state.Options()
	info := v.pageLabel()
	if opts.Direction == viewer.RTL {
		info += " · RTL"
	}
	if opts.Spread != viewer.SpreadNone {
		info += " · " + opts.Spread.Label()
	}
	info += fmt.Sprintf(" · %.0f%%", v.state.Scale()*100)
	if v.loading {
		info += " · loading"
	}
	if v.isZoomed() {
		info += fmt.Sprintf(" [zoom %.0f%%]", v.currentZoom()*100)
	}
	rightPart := styles.MutedText.Render(info)

	gap := max(v.width-lipgloss.Width(titlePart)-lipgloss.Width(rightPart), 0)
	return titlePart + strings.Repeat(" ", gap) + rightPart
}

// renderSlider renders the scrub bar; while scrubbing it shows the target page
func (v *PagerView) renderSlider() string {
	label := fmt.Sprintf(" %d", v.state.Slider())
	if v.scrubbing {
		label = styles.HelpKey.Render(fmt.Sprintf(" → %d", v.state.Slider()))
	}
	v.slider.Width = max(v.width-lipgloss.Width(label)-1, 10)
	frac := float64(v.state.Slider()) / float64(v.state.SliderMax())
	return v.slider.ViewAs(frac) + label
}

// renderFooter renders the footer help with consistent styling
func (v *PagerView) renderFooter() string {
	var help []string
	switch {
	case v.scrubbing:
		help = []string{
			styles.HelpKey.Render("←/→") + styles.Help.Render(" move"),
			styles.HelpKey.Render("H/L") + styles.Help.Render(" jump"),
			styles.HelpKey.Render("enter") + styles.Help.Render(" go"),
			styles.HelpKey.Render("esc") + styles.Help.Render(" cancel"),
		}
	case v.isZoomed():
		help = []string{
			styles.HelpKey.Render("hjkl") + styles.Help.Render(" pan"),
			styles.HelpKey.Render("+/-") + styles.Help.Render(" zoom"),
			styles.HelpKey.Render("0") + styles.Help.Render(" reset"),
			styles.HelpKey.Render("←/→") + styles.Help.Render(" page"),
			styles.HelpKey.Render("q") + styles.Help.Render(" back"),
		}
	default:
		help = []string{
			styles.HelpKey.Render("←/→") + styles.Help.Render(" page"),
			styles.HelpKey.Render("g/G") + styles.Help.Render(" first/last"),
			styles.HelpKey.Render("s") + styles.Help.Render(" slider"),
			styles.HelpKey.Render("+/-") + styles.Help.Render(" zoom"),
			styles.HelpKey.Render("o") + styles.Help.Render(" options"),
			styles.HelpKey.Render("q") + styles.Help.Render(" back"),
		}
	}
	return styles.FooterBar.Width(v.width).Render(strings.Join(help, "  "))
}

// SetSize implements View
func (v *PagerView) SetSize(width, height int) {
	v.width = width
	v.height = height
	if v.primary.Valid() {
		v.state.Fit(v.primary, v.viewport())
	}
}
