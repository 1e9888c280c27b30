package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the application key bindings. The app handles Quit and
// Help itself; the rest are handled by the views and listed in the help
// overlay.
type KeyMap struct {
	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
	Enter  key.Binding

	// Viewers
	TurnLeft  key.Binding
	TurnRight key.Binding
	Slider    key.Binding
	Options   key.Binding
	Zoom      key.Binding

	// Library
	Search  key.Binding
	Sort    key.Binding
	Order   key.Binding
	Folders key.Binding
	Parent  key.Binding
	Details key.Binding
	Theme   key.Binding

	// General
	Escape key.Binding
	Quit   key.Binding
	Help   key.Binding
}

// DefaultKeyMap returns the default vim-like key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("Home/g", "top, first page"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("End/G", "bottom, last page"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "open"),
		),
		TurnLeft: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "turn left"),
		),
		TurnRight: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "turn right"),
		),
		Slider: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "scrub slider"),
		),
		Options: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "viewer options"),
		),
		Zoom: key.NewBinding(
			key.WithKeys("+", "-", "0"),
			key.WithHelp("+/-/0", "zoom pages"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "cycle sort"),
		),
		Order: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "toggle order"),
		),
		Folders: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "browse folders"),
		),
		Parent: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("⌫", "parent folder"),
		),
		Details: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "details"),
		),
		Theme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "next theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("^c", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
	}
}

// HelpSections groups the bindings for the help overlay
func (k KeyMap) HelpSections() []HelpSection {
	return []HelpSection{
		{"Navigation", []key.Binding{k.Up, k.Down, k.Top, k.Bottom, k.Enter}},
		{"Viewers", []key.Binding{k.TurnLeft, k.TurnRight, k.Slider, k.Options, k.Zoom}},
		{"Library", []key.Binding{k.Search, k.Sort, k.Order, k.Folders, k.Parent, k.Details, k.Theme}},
		{"General", []key.Binding{k.Escape, k.Help, k.Quit}},
	}
}

// HelpSection is one titled group of bindings
type HelpSection struct {
	Title    string
	Bindings []key.Binding
}
