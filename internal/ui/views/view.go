package views

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/justyntemme/tome-t/internal/library"
	"github.com/justyntemme/tome-t/pkg/models"
)

// ViewType represents different screens in the application
type ViewType int

const (
	ViewHome ViewType = iota
	ViewLibrary
	ViewDetails
	ViewPager
	ViewReader
)

// String returns the name of the view
func (v ViewType) String() string {
	switch v {
	case ViewHome:
		return "Home"
	case ViewLibrary:
		return "Library"
	case ViewDetails:
		return "Details"
	case ViewPager:
		return "Page Viewer"
	case ViewReader:
		return "Reader"
	default:
		return "Unknown"
	}
}

// IsViewer reports whether the view shows book content
func (v ViewType) IsViewer() bool {
	return v == ViewPager || v == ViewReader
}

// View is the interface that all views must implement
type View interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (View, tea.Cmd)
	View() string
	SetSize(width, height int)
}

// Closer is implemented by views holding a viewer session that must end
// when the view is left
type Closer interface {
	Close()
}

// InputCapturer is implemented by views that can own the keyboard, e.g.
// while a text field is focused, so global keys must not fire
type InputCapturer interface {
	CapturingInput() bool
}

// ScreenClearer is implemented by views that draw images outside the
// character grid and must erase them when left
type ScreenClearer interface {
	ClearScreen() string
}

// Message types for inter-view communication

// OpenRouteMsg is sent when a library entry is selected
type OpenRouteMsg struct {
	Route library.Route
}

// ShowDetailsMsg asks for the details screen of an entry
type ShowDetailsMsg struct {
	Entry models.BookEntry
}

// BrowseMsg switches the library to another listing
type BrowseMsg struct {
	Query library.Query
}

// ErrorMsg is sent when an error occurs
type ErrorMsg struct {
	Err error
}

// ClearErrorMsg clears the current error
type ClearErrorMsg struct{}

// SwitchViewMsg requests a view switch
type SwitchViewMsg struct {
	View ViewType
}

// BackMsg leaves the current screen for the previous one
type BackMsg struct{}

// Helper functions to create messages

// SendError creates an error message command
func SendError(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Err: err}
	}
}

// SwitchTo creates a command to switch views
func SwitchTo(view ViewType) tea.Cmd {
	return func() tea.Msg {
		return SwitchViewMsg{View: view}
	}
}

// OpenRoute creates a command opening route
func OpenRoute(route library.Route) tea.Cmd {
	return func() tea.Msg {
		return OpenRouteMsg{Route: route}
	}
}

// Browse creates a command showing the listing q
func Browse(q library.Query) tea.Cmd {
	return func() tea.Msg {
		return BrowseMsg{Query: q}
	}
}

// Back creates a command returning to the previous screen
func Back() tea.Cmd {
	return func() tea.Msg {
		return BackMsg{}
	}
}
