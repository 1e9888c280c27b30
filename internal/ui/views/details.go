package views

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/justyntemme/tome-t/internal/library"
	"github.com/justyntemme/tome-t/internal/logging"
	"github.com/justyntemme/tome-t/internal/pages"
	"github.com/justyntemme/tome-t/internal/ui/styles"
	"github.com/justyntemme/tome-t/internal/ui/terminal"
	"github.com/justyntemme/tome-t/internal/viewer"
	"github.com/justyntemme/tome-t/pkg/models"
)

// Cover box in terminal cells
const (
	coverCols = 24
	coverRows = 16
)

// CoverFetcher downloads cover images. *api.Client satisfies it.
type CoverFetcher interface {
	Cover(ctx context.Context, cover string) ([]byte, string, error)
}

// DetailsView shows what the library knows about one entry, with its cover
// when the terminal can display images
type DetailsView struct {
	entry  *models.BookEntry
	covers CoverFetcher
	logger *slog.Logger

	cover    string // rendered cover image
	termMode terminal.ImageMode
	cellW    int
	cellH    int

	width  int
	height int
}

// coverMsg carries a rendered cover
type coverMsg struct {
	cover string // the entry's cover path
	out   string
	err   error
}

// NewDetailsView creates an empty details view. covers may be nil, which
// leaves covers out.
func NewDetailsView(covers CoverFetcher, cellW, cellH int, logger *slog.Logger) *DetailsView {
	return &DetailsView{
		covers:   covers,
		logger:   logging.OrDiscard(logger),
		termMode: terminal.DetectMode(),
		cellW:    cellW,
		cellH:    cellH,
		width:    80,
		height:   24,
	}
}

// SetEntry sets the entry to display
func (v *DetailsView) SetEntry(entry models.BookEntry) {
	v.entry = &entry
	v.cover = ""
}

// Init implements View
func (v *DetailsView) Init() tea.Cmd {
	return v.loadCover()
}

// ClearScreen implements ScreenClearer
func (v *DetailsView) ClearScreen() string {
	if v.cover == "" {
		return ""
	}
	return terminal.ClearAll(v.termMode)
}

// loadCover fetches, fits and encodes the cover off the event loop
func (v *DetailsView) loadCover() tea.Cmd {
	if v.entry == nil || v.entry.Cover == "" || v.covers == nil || v.termMode == terminal.ModeNone {
		return nil
	}
	cover, covers, mode := v.entry.Cover, v.covers, v.termMode
	w, h := terminal.PixelSize(coverCols, coverRows, v.cellW, v.cellH)
	box := viewer.Size{Width: w, Height: h}

	return func() tea.Msg {
		out, err := renderCover(covers, cover, box, mode)
		return coverMsg{cover: cover, out: out, err: err}
	}
}

func renderCover(covers CoverFetcher, cover string, box viewer.Size, mode terminal.ImageMode) (string, error) {
	data, _, err := covers.Cover(context.Background(), cover)
	if err != nil {
		return "", err
	}
	img, err := pages.Decode(data)
	if err != nil {
		return "", err
	}
	b := img.Bounds()
	scale := viewer.FitScale(viewer.Size{Width: b.Dx(), Height: b.Dy()}, false, box)
	return terminal.Render(pages.Scale(img, scale), mode)
}

// Update implements View
func (v *DetailsView) Update(msg tea.Msg) (View, tea.Cmd) {
	if msg, ok := msg.(coverMsg); ok {
		if v.entry == nil || msg.cover != v.entry.Cover {
			return v, nil
		}
		if msg.err != nil {
			// The details stay useful without a cover
			v.logger.Debug("cover unavailable", "cover", msg.cover, "err", msg.err)
			return v, nil
		}
		v.cover = msg.out
		return v, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc", "q", "i":
			return v, Back()
		case "enter":
			if v.entry == nil {
				return v, nil
			}
			route := library.RouteFor(*v.entry, v.logger)
			switch route.Kind {
			case library.RouteFolder:
				return v, Browse(route.Query)
			case library.RouteLibrary:
				return v, nil
			}
			return v, OpenRoute(route)
		}
	}
	return v, nil
}

// View implements View
func (v *DetailsView) View() string {
	if v.entry == nil {
		return "No entry selected"
	}
	e := v.entry

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.Primary).
		MarginBottom(1)
	b.WriteString(titleStyle.Render(e.Title) + "\n\n")

	b.WriteString(v.renderField("Type", FormatBadge(e.Type)))
	b.WriteString(v.renderField("Path", e.Path))
	b.WriteString(v.renderField("Opens in", openedIn(e.Type)))

	if !e.IsFolder() {
		b.WriteString("\n")
		b.WriteString(styles.HelpKey.Render("Reading Progress") + "\n")
		if e.CurrentPosition == "" && e.Progress == 0 {
			b.WriteString(styles.MutedText.Render("  Not started\n"))
		} else {
			position := e.CurrentPosition
			if e.Type.IsPaginated() {
				position = fmt.Sprintf("page %d", library.InitialPage(e.CurrentPosition))
			}
			b.WriteString(v.renderField("Position", position))
			b.WriteString(v.renderField("Progress",
				renderProgressBar(20, e.Progress)+fmt.Sprintf(" %.1f%%", e.Progress*100)))
		}
	}

	b.WriteString("\n")
	b.WriteString(v.renderFooter())

	content := lipgloss.NewStyle().
		Width(max(v.width-4, 10)).
		Padding(1, 2).
		Render(b.String())

	if v.cover != "" {
		// Image sequences cannot be centered by lipgloss; the cover sits on
		// top and the details follow below it
		dialog := styles.Dialog.Width(min(70, max(v.width-4, 20))).Render(content)
		return v.cover + "\n" + lipgloss.PlaceHorizontal(v.width, lipgloss.Center, dialog)
	}

	return lipgloss.Place(
		v.width,
		v.height,
		lipgloss.Center,
		lipgloss.Center,
		styles.Dialog.Width(min(70, max(v.width-4, 20))).Render(content),
	)
}

func openedIn(t models.BookType) string {
	switch {
	case t == models.BookTypeFolder:
		return "library"
	case t == models.BookTypeEPUB:
		return "text reader"
	case t.IsPaginated():
		return "page viewer"
	default:
		return "unsupported"
	}
}

// renderField renders a label-value pair
func (v *DetailsView) renderField(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Foreground(styles.Muted).
		Width(12)
	valueStyle := lipgloss.NewStyle().
		Foreground(styles.Foreground)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value) + "\n"
}

// renderFooter renders the footer help
func (v *DetailsView) renderFooter() string {
	help := []string{
		styles.HelpKey.Render("enter") + styles.Help.Render(" open"),
		styles.HelpKey.Render("esc/q") + styles.Help.Render(" back"),
	}
	return strings.Join(help, "  ")
}

// SetSize implements View
func (v *DetailsView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// renderProgressBar renders a progress bar of width cells using Unicode
// block characters; progress runs from 0 to 1
func renderProgressBar(width int, progress float64) string {
	width = max(width, 3)
	progress = min(max(progress, 0), 1)

	const (
		empty    = "░"
		filled   = "█"
		partials = "▏▎▍▌▋▊▉" // 1/8 to 7/8 filled
	)

	filledWidth := progress * float64(width)
	fullBlocks := int(filledWidth)
	remainder := filledWidth - float64(fullBlocks)

	var bar strings.Builder
	bar.WriteString(strings.Repeat(filled, min(fullBlocks, width)))

	if fullBlocks < width {
		if i := int(remainder * 8); i > 0 {
			bar.WriteRune([]rune(partials)[min(i, 7)-1])
			fullBlocks++
		}
	}

	bar.WriteString(strings.Repeat(empty, max(width-fullBlocks, 0)))
	return bar.String()
}
