package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Colors and styles are assigned by ApplyTheme.
var (
	Primary    lipgloss.Color
	Muted      lipgloss.Color
	Foreground lipgloss.Color

	TitleBar  lipgloss.Style
	FooterBar lipgloss.Style

	// Help text
	Help    lipgloss.Style
	HelpKey lipgloss.Style

	MutedText  lipgloss.Style
	ErrorStyle lipgloss.Style

	InputFieldFocused lipgloss.Style

	// List styles
	ListItem         lipgloss.Style
	ListItemSelected lipgloss.Style

	// Viewer header and reading progress
	ReaderHeader   lipgloss.Style
	ReaderProgress lipgloss.Style

	// Dialog/Modal styles
	Dialog      lipgloss.Style
	DialogTitle lipgloss.Style

	BookFolder lipgloss.Style

	// Format badges
	BadgeText   lipgloss.Style
	BadgeImage  lipgloss.Style
	BadgeFolder lipgloss.Style
)

// TruncateText shortens s to at most width terminal cells, ending in an ellipsis
// when something was cut. Wide runes count double.
func TruncateText(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}
