package ui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/justyntemme/tome-t/internal/api"
	"github.com/justyntemme/tome-t/internal/config"
	"github.com/justyntemme/tome-t/internal/library"
	"github.com/justyntemme/tome-t/internal/logging"
	"github.com/justyntemme/tome-t/internal/pages"
	"github.com/justyntemme/tome-t/internal/report"
	"github.com/justyntemme/tome-t/internal/ui/styles"
	"github.com/justyntemme/tome-t/internal/ui/views"
	"github.com/justyntemme/tome-t/internal/viewer"
)

// errorTimeout is how long the error bar stays up
const errorTimeout = 5 * time.Second

// Deps are the collaborators the views are built from
type Deps struct {
	Config   *config.Config
	Client   *api.Client
	Options  *viewer.OptionsStore
	Notifier viewer.Notifier
	Logger   *slog.Logger
}

// App is the main application model
type App struct {
	deps   Deps
	logger *slog.Logger
	keys   KeyMap

	// Current view state; history holds the screens Back returns to
	currentView views.ViewType
	history     []views.ViewType

	// Window dimensions
	width  int
	height int

	// View models. viewerView is the open pager or reader, if any.
	homeView    *views.HomeView
	libraryView *views.LibraryView
	detailsView *views.DetailsView
	viewerView  views.View
	panel       *views.OptionsPanel

	// standalone apps show a single local book and quit when it is closed
	standalone bool

	// Error message and pending escape sequence for the next frame
	err         error
	errSeq      int
	pendingDraw string
	showHelp    bool
}

// clearErrorMsg hides the error bar if no newer error replaced it
type clearErrorMsg struct {
	seq int
}

// NewApp creates the library browser starting on the home screen
func NewApp(d Deps) *App {
	a := newApp(d)
	a.homeView = views.NewHomeView(d.Client, a.logger)
	a.libraryView = views.NewLibraryView(d.Client, d.Config, a.logger)
	var covers views.CoverFetcher
	if d.Client != nil {
		covers = d.Client
	}
	a.detailsView = views.NewDetailsView(covers, d.Config.CellWidth, d.Config.CellHeight, a.logger)
	a.currentView = views.ViewHome
	return a
}

// NewLocalApp creates an app showing one local file: a comic archive in the
// page viewer or an EPUB in the reader. Nothing is reported to the server.
func NewLocalApp(d Deps, file string) (*App, error) {
	d.Notifier = report.Nop{}
	a := newApp(d)
	a.standalone = true
	title := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	opts := a.loadOptions()

	switch {
	case pages.IsArchive(file):
		src, err := pages.OpenArchive(file)
		if err != nil {
			return nil, err
		}
		state := viewer.NewPaginated("", 1, opts, a.deps.Notifier)
		a.viewerView = a.newPagerView(title, state, src)
		a.currentView = views.ViewPager
	case strings.EqualFold(filepath.Ext(file), ".epub"):
		state := viewer.NewReflowable("", opts, a.deps.Notifier)
		load := func(context.Context) ([]byte, error) {
			return os.ReadFile(file)
		}
		a.viewerView = views.NewReaderView(title, "", state, load, a.panel, d.Config.CellWidth, d.Config.CellHeight, a.logger)
		a.currentView = views.ViewReader
	default:
		return nil, fmt.Errorf("unsupported file %s", file)
	}
	return a, nil
}

func newApp(d Deps) *App {
	logger := logging.OrDiscard(d.Logger)
	if d.Notifier == nil {
		d.Notifier = report.Nop{}
	}
	return &App{
		deps:   d,
		logger: logger,
		keys:   DefaultKeyMap(),
		panel:  views.NewOptionsPanel(d.Options),
		width:  80,
		height: 24,
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	if name := a.deps.Config.Theme; name != "" {
		styles.SetCurrentTheme(name)
	}
	return tea.Batch(
		a.getCurrentView().Init(),
		tea.SetWindowTitle("tome-t"),
	)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		for _, v := range a.allViews() {
			v.SetSize(msg.Width, msg.Height)
		}
		if a.currentView.IsViewer() {
			// Viewers re-render for the new size
			var cmd tea.Cmd
			a.viewerView, cmd = a.viewerView.Update(msg)
			return a, cmd
		}
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.Quit) {
			return a, a.quit()
		}
		if !a.capturingInput() {
			switch {
			case key.Matches(msg, a.keys.Help):
				a.showHelp = !a.showHelp
				return a, nil
			case a.showHelp:
				// Any key dismisses the overlay
				a.showHelp = false
				return a, nil
			}
		}

	case views.OpenRouteMsg:
		return a.openRoute(msg.Route)

	case views.BrowseMsg:
		cmd := a.libraryView.SetQuery(msg.Query)
		a2, switchCmd := a.switchView(views.ViewLibrary)
		return a2, tea.Batch(cmd, switchCmd)

	case views.ShowDetailsMsg:
		a.detailsView.SetEntry(msg.Entry)
		return a.switchView(views.ViewDetails)

	case views.BackMsg:
		return a.back()

	case views.ErrorMsg:
		a.err = msg.Err
		a.errSeq++
		seq := a.errSeq
		a.logger.Debug("error shown", "err", msg.Err)
		return a, tea.Tick(errorTimeout, func(time.Time) tea.Msg {
			return clearErrorMsg{seq: seq}
		})

	case clearErrorMsg:
		if msg.seq == a.errSeq {
			a.err = nil
		}
		return a, nil

	case views.SwitchViewMsg:
		return a.switchView(msg.View)
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch a.currentView {
	case views.ViewHome:
		_, cmd = a.homeView.Update(msg)
	case views.ViewLibrary:
		_, cmd = a.libraryView.Update(msg)
	case views.ViewDetails:
		_, cmd = a.detailsView.Update(msg)
	case views.ViewPager, views.ViewReader:
		a.viewerView, cmd = a.viewerView.Update(msg)
	}
	return a, cmd
}

// View implements tea.Model
func (a *App) View() string {
	content := a.getCurrentView().View()

	if a.err != nil {
		errorBar := styles.ErrorStyle.Render("Error: " + a.err.Error())
		content = lipgloss.JoinVertical(lipgloss.Left, content, errorBar)
	}

	if a.showHelp {
		content = a.renderHelp()
		if c, ok := a.viewerView.(views.ScreenClearer); ok && a.currentView.IsViewer() {
			content = c.ClearScreen() + content
		}
	}

	if a.pendingDraw != "" {
		content = a.pendingDraw + content
		a.pendingDraw = ""
	}
	return content
}

// openRoute opens a library entry
func (a *App) openRoute(route library.Route) (*App, tea.Cmd) {
	// The reporting path is what the viewer URL carries
	path := viewer.EncodedFilePath(viewer.SourceURL(route.Format, route.Path), a.logger)
	opts := a.loadOptions()

	switch route.Kind {
	case library.RouteFolder:
		cmd := a.libraryView.SetQuery(route.Query)
		a2, switchCmd := a.switchView(views.ViewLibrary)
		return a2, tea.Batch(cmd, switchCmd)

	case library.RoutePaginated:
		a.closeViewer()
		state := viewer.NewPaginated(path, route.InitialPage, opts, a.deps.Notifier)
		src := pages.NewRemoteSource(a.deps.Client, route.Format, route.Path)
		a.viewerView = a.newPagerView(route.Title, state, src)
		return a.switchView(views.ViewPager)

	case library.RouteReflowable:
		a.closeViewer()
		state := viewer.NewReflowable(path, opts, a.deps.Notifier)
		client, bookPath := a.deps.Client, route.Path
		load := func(ctx context.Context) ([]byte, error) {
			return client.EPUB(ctx, bookPath)
		}
		cfg := a.deps.Config
		a.viewerView = views.NewReaderView(route.Title, route.Position, state, load, a.panel, cfg.CellWidth, cfg.CellHeight, a.logger)
		return a.switchView(views.ViewReader)
	}
	return a, nil
}

func (a *App) newPagerView(title string, state *viewer.Paginated, src pages.Source) *views.PagerView {
	cfg := a.deps.Config
	loader := pages.NewLoader(src, cfg.PageCacheSize, a.logger)
	return views.NewPagerView(title, state, loader, a.panel, cfg.CellWidth, cfg.CellHeight, a.logger)
}

// loadOptions reads the persisted viewer options; each viewer mount gets
// the latest saved values
func (a *App) loadOptions() viewer.ViewerOptions {
	if a.deps.Options == nil {
		return viewer.DefaultOptions()
	}
	return a.deps.Options.Load()
}

// switchView changes the current view and initializes it
func (a *App) switchView(view views.ViewType) (*App, tea.Cmd) {
	if view == a.currentView {
		return a, nil
	}
	if a.currentView.IsViewer() && !view.IsViewer() {
		a.closeViewer()
	}
	a.leaveDetails()
	if view == views.ViewHome {
		// Home is the root of the history
		a.history = a.history[:0]
	} else {
		a.history = append(a.history, a.currentView)
	}
	a.currentView = view
	a.err = nil

	v := a.getCurrentView()
	v.SetSize(a.width, a.height)
	return a, v.Init()
}

// back returns to the previous screen; a standalone viewer quits instead
func (a *App) back() (*App, tea.Cmd) {
	if a.standalone {
		return a, a.quit()
	}
	if len(a.history) == 0 {
		return a, nil
	}
	prev := a.history[len(a.history)-1]
	a.history = a.history[:len(a.history)-1]

	if a.currentView.IsViewer() {
		a.closeViewer()
	}
	a.leaveDetails()
	a.currentView = prev
	a.err = nil

	// Returning to a listing keeps its state; only refresh the home shelves
	if prev == views.ViewHome {
		return a, a.homeView.Init()
	}
	return a, nil
}

// closeViewer ends the open viewer session and erases its images
func (a *App) closeViewer() {
	if a.viewerView == nil {
		return
	}
	if c, ok := a.viewerView.(views.Closer); ok {
		c.Close()
	}
	if c, ok := a.viewerView.(views.ScreenClearer); ok {
		a.pendingDraw = c.ClearScreen()
	}
	a.viewerView = nil
	a.history = dropViewers(a.history)
}

// leaveDetails erases the cover when the details screen is left
func (a *App) leaveDetails() {
	if a.currentView == views.ViewDetails && a.detailsView != nil {
		a.pendingDraw += a.detailsView.ClearScreen()
	}
}

// quit ends the viewer session but keeps it as the final frame
func (a *App) quit() tea.Cmd {
	if c, ok := a.viewerView.(views.Closer); ok {
		c.Close()
	}
	if c, ok := a.viewerView.(views.ScreenClearer); ok {
		a.pendingDraw = c.ClearScreen()
	}
	return tea.Quit
}

func dropViewers(history []views.ViewType) []views.ViewType {
	out := history[:0]
	for _, v := range history {
		if !v.IsViewer() {
			out = append(out, v)
		}
	}
	return out
}

func (a *App) capturingInput() bool {
	c, ok := a.getCurrentView().(views.InputCapturer)
	return ok && c.CapturingInput()
}

// getCurrentView returns the current view model
func (a *App) getCurrentView() views.View {
	switch a.currentView {
	case views.ViewLibrary:
		return a.libraryView
	case views.ViewDetails:
		return a.detailsView
	case views.ViewPager, views.ViewReader:
		if a.viewerView != nil {
			return a.viewerView
		}
	}
	return a.homeView
}

func (a *App) allViews() []views.View {
	var out []views.View
	for _, v := range []views.View{a.homeView, a.libraryView, a.detailsView, a.viewerView} {
		if v != nil && !isNilView(v) {
			out = append(out, v)
		}
	}
	return out
}

// isNilView catches typed nil pointers stored in the View interface
func isNilView(v views.View) bool {
	switch v := v.(type) {
	case *views.HomeView:
		return v == nil
	case *views.LibraryView:
		return v == nil
	case *views.DetailsView:
		return v == nil
	}
	return false
}

// renderHelp renders the help overlay from the key map
func (a *App) renderHelp() string {
	var b strings.Builder
	b.WriteString(styles.DialogTitle.Render("Keyboard Shortcuts") + "\n\n")
	for i, section := range a.keys.HelpSections() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(styles.HelpKey.Render(section.Title) + "\n")
		for _, binding := range section.Bindings {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-8s %s\n", h.Key, h.Desc))
		}
	}

	help := styles.Dialog.Width(min(60, max(a.width-4, 20))).Render(strings.TrimRight(b.String(), "\n"))
	return lipgloss.Place(
		a.width,
		a.height,
		lipgloss.Center,
		lipgloss.Center,
		help,
	)
}
