package styles

import "github.com/charmbracelet/lipgloss"

// Theme is a reading palette. Badge foregrounds use Page so badges read as
// cut-outs of the background.
type Theme struct {
	Name string

	Accent lipgloss.Color // title bars, selection, dialog frames
	Key    lipgloss.Color // key hints and the progress label
	Page   lipgloss.Color
	Ink    lipgloss.Color
	Faint  lipgloss.Color
	Rule   lipgloss.Color
	Error  lipgloss.Color

	// Format badges: reflowable text, paginated images, folders
	BadgeText   lipgloss.Color
	BadgeImage  lipgloss.Color
	BadgeFolder lipgloss.Color
}

var (
	// NightTheme is the default, a low-glare dark palette
	NightTheme = Theme{
		Name:        "night",
		Accent:      lipgloss.Color("#5B7DB1"),
		Key:         lipgloss.Color("#8FB8DE"),
		Page:        lipgloss.Color("#16181D"),
		Ink:         lipgloss.Color("#D8DEE9"),
		Faint:       lipgloss.Color("#6C7383"),
		Rule:        lipgloss.Color("#2A2E37"),
		Error:       lipgloss.Color("#D0666F"),
		BadgeText:   lipgloss.Color("#8FBF8F"),
		BadgeImage:  lipgloss.Color("#D9A75B"),
		BadgeFolder: lipgloss.Color("#8FB8DE"),
	}

	// SepiaTheme imitates aged paper
	SepiaTheme = Theme{
		Name:        "sepia",
		Accent:      lipgloss.Color("#8B5A2B"),
		Key:         lipgloss.Color("#A0522D"),
		Page:        lipgloss.Color("#F4ECD8"),
		Ink:         lipgloss.Color("#4B3A26"),
		Faint:       lipgloss.Color("#9C8B73"),
		Rule:        lipgloss.Color("#E2D5B8"),
		Error:       lipgloss.Color("#B03A2E"),
		BadgeText:   lipgloss.Color("#6B8E23"),
		BadgeImage:  lipgloss.Color("#B8860B"),
		BadgeFolder: lipgloss.Color("#8B5A2B"),
	}

	// InkTheme is a high-contrast monochrome palette
	InkTheme = Theme{
		Name:        "ink",
		Accent:      lipgloss.Color("#FFFFFF"),
		Key:         lipgloss.Color("#FFFFFF"),
		Page:        lipgloss.Color("#000000"),
		Ink:         lipgloss.Color("#E0E0E0"),
		Faint:       lipgloss.Color("#8A8A8A"),
		Rule:        lipgloss.Color("#303030"),
		Error:       lipgloss.Color("#FF5F5F"),
		BadgeText:   lipgloss.Color("#C0C0C0"),
		BadgeImage:  lipgloss.Color("#A0A0A0"),
		BadgeFolder: lipgloss.Color("#FFFFFF"),
	}

	// Themes lists the palettes in the order the theme key cycles them
	Themes = []Theme{NightTheme, SepiaTheme, InkTheme}

	currentTheme = NightTheme
)

// CurrentTheme returns the active theme
func CurrentTheme() Theme {
	return currentTheme
}

// SetCurrentTheme activates the named theme; unknown names select the default
func SetCurrentTheme(name string) {
	currentTheme = NightTheme
	for _, t := range Themes {
		if t.Name == name {
			currentTheme = t
		}
	}
	ApplyTheme(currentTheme)
}

// NextTheme activates the theme after the current one and returns its name
func NextTheme() string {
	next := Themes[0]
	for i, t := range Themes {
		if t.Name == currentTheme.Name {
			next = Themes[(i+1)%len(Themes)]
		}
	}
	SetCurrentTheme(next.Name)
	return next.Name
}

// ApplyTheme rebuilds the shared styles from theme
func ApplyTheme(theme Theme) {
	Primary = theme.Accent
	Muted = theme.Faint
	Foreground = theme.Ink

	bar := lipgloss.NewStyle().
		Foreground(theme.Page).
		Background(theme.Accent).
		Padding(0, 1).
		Bold(true)
	TitleBar = bar
	ReaderHeader = bar

	FooterBar = lipgloss.NewStyle().
		Foreground(theme.Ink).
		Background(theme.Rule).
		Padding(0, 1)

	Help = lipgloss.NewStyle().Foreground(theme.Faint)
	MutedText = Help
	HelpKey = lipgloss.NewStyle().Foreground(theme.Key).Bold(true)
	ReaderProgress = lipgloss.NewStyle().Foreground(theme.Key).Align(lipgloss.Right)

	ErrorStyle = lipgloss.NewStyle().
		Foreground(theme.Error).
		Bold(true).
		Padding(0, 1)

	InputFieldFocused = lipgloss.NewStyle().
		Foreground(theme.Ink).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Accent).
		Padding(0, 1)

	ListItem = lipgloss.NewStyle().
		Foreground(theme.Ink).
		Padding(0, 2)
	ListItemSelected = ListItem.
		Foreground(theme.Page).
		Background(theme.Accent).
		Bold(true)

	Dialog = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Accent).
		Padding(1, 2)
	DialogTitle = lipgloss.NewStyle().
		Foreground(theme.Accent).
		Bold(true).
		MarginBottom(1)

	BookFolder = lipgloss.NewStyle().Foreground(theme.BadgeFolder).Bold(true)

	badge := func(bg lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(theme.Page).Background(bg).Padding(0, 1).Bold(true)
	}
	BadgeText = badge(theme.BadgeText)
	BadgeImage = badge(theme.BadgeImage)
	BadgeFolder = badge(theme.BadgeFolder)
}

func init() {
	ApplyTheme(NightTheme)
}
