package views

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/justyntemme/tome-t/internal/ui/styles"
	"github.com/justyntemme/tome-t/internal/viewer"
)

const (
	optDirection = iota
	optSpread
	optFontSize
	optCount
)

// OptionsPanel is the viewer options overlay. Every change is saved at once
// and handed back to the viewer that opened it.
type OptionsPanel struct {
	store *viewer.OptionsStore
	opts  viewer.ViewerOptions

	open      bool
	cursor    int
	editing   bool
	fontInput textinput.Model
}

// NewOptionsPanel creates a closed panel saving through store
func NewOptionsPanel(store *viewer.OptionsStore) *OptionsPanel {
	ti := textinput.New()
	ti.Placeholder = strconv.Itoa(viewer.MinFontSize)
	ti.CharLimit = 3
	ti.Width = 6
	ti.Prompt = ""

	return &OptionsPanel{
		store:     store,
		fontInput: ti,
	}
}

// Open shows the panel starting from the viewer's current options
func (p *OptionsPanel) Open(opts viewer.ViewerOptions) {
	p.opts = opts
	p.open = true
	p.cursor = 0
	p.editing = false
	p.fontInput.Blur()
}

// IsOpen reports whether the panel is shown
func (p *OptionsPanel) IsOpen() bool {
	return p.open
}

// Options returns the options as last changed in the panel
func (p *OptionsPanel) Options() viewer.ViewerOptions {
	return p.opts
}

// Update handles a key while the panel is open. changed is true when the
// options were modified; the viewer should then apply Options().
func (p *OptionsPanel) Update(msg tea.KeyMsg) (changed bool, cmd tea.Cmd) {
	if p.editing {
		return p.updateFontInput(msg)
	}

	switch msg.String() {
	case "esc", "o", "q":
		p.open = false
	case "up", "k":
		p.cursor = (p.cursor + optCount - 1) % optCount
	case "down", "j", "tab":
		p.cursor = (p.cursor + 1) % optCount
	case "enter", " ", "left", "right", "h", "l":
		switch p.cursor {
		case optDirection:
			if p.opts.Direction == viewer.RTL {
				p.opts.Direction = viewer.LTR
			} else {
				p.opts.Direction = viewer.RTL
			}
			return true, p.save()
		case optSpread:
			p.opts.Spread = p.opts.Spread.Next()
			return true, p.save()
		case optFontSize:
			if msg.String() == "enter" || msg.String() == " " {
				p.editing = true
				p.fontInput.SetValue(strconv.Itoa(p.opts.FontSize))
				p.fontInput.CursorEnd()
				return false, p.fontInput.Focus()
			}
			step := 1
			if msg.String() == "left" || msg.String() == "h" {
				step = -1
			}
			p.opts.FontSize = viewer.ClampFontSize(p.opts.FontSize + step)
			return true, p.save()
		}
	case "+", "=":
		if p.cursor == optFontSize {
			p.opts.FontSize = viewer.ClampFontSize(p.opts.FontSize + 1)
			return true, p.save()
		}
	case "-":
		if p.cursor == optFontSize {
			p.opts.FontSize = viewer.ClampFontSize(p.opts.FontSize - 1)
			return true, p.save()
		}
	}
	return false, nil
}

func (p *OptionsPanel) updateFontInput(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "esc":
		p.editing = false
		p.fontInput.Blur()
		return false, nil
	case "enter":
		p.editing = false
		p.fontInput.Blur()
		size, err := ParseFontSize(p.fontInput.Value())
		if err != nil {
			return false, SendError(err)
		}
		p.opts.FontSize = size
		return true, p.save()
	}

	var cmd tea.Cmd
	p.fontInput, cmd = p.fontInput.Update(msg)
	return false, cmd
}

// ParseFontSize reads a font size typed into the panel. An empty entry
// means the smallest size; anything else is clamped to the accepted range.
func ParseFontSize(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return viewer.MinFontSize, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("font size %q is not a number", s)
	}
	return viewer.ClampFontSize(n), nil
}

func (p *OptionsPanel) save() tea.Cmd {
	if p.store == nil {
		return nil
	}
	if err := p.store.Save(p.opts); err != nil {
		return SendError(err)
	}
	return nil
}

// View renders the panel as a centered dialog
func (p *OptionsPanel) View(width, height int) string {
	var b strings.Builder
	b.WriteString(styles.DialogTitle.Render("Viewer Options") + "\n")

	font := strconv.Itoa(p.opts.FontSize)
	if p.editing {
		font = styles.InputFieldFocused.Render(p.fontInput.View())
	}

	rows := []struct{ label, value string }{
		{"Direction", directionLabel(p.opts.Direction)},
		{"Spread", p.opts.Spread.Label()},
		{"Font size", font},
	}
	for i, row := range rows {
		line := fmt.Sprintf("%-10s %s", row.label, row.value)
		if i == p.cursor {
			b.WriteString(styles.ListItemSelected.Render("▸ "+line) + "\n")
		} else {
			b.WriteString(styles.ListItem.Render("  "+line) + "\n")
		}
	}

	b.WriteString("\n")
	help := []string{
		styles.HelpKey.Render("j/k") + styles.Help.Render(" select"),
		styles.HelpKey.Render("enter") + styles.Help.Render(" change"),
		styles.HelpKey.Render("+/-") + styles.Help.Render(" size"),
		styles.HelpKey.Render("esc") + styles.Help.Render(" close"),
	}
	b.WriteString(strings.Join(help, "  "))

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		styles.Dialog.Width(min(44, max(width-4, 20))).Render(b.String()),
	)
}

func directionLabel(d viewer.Direction) string {
	if d == viewer.RTL {
		return "Right to left"
	}
	return "Left to right"
}
