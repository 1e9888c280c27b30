package views

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/justyntemme/tome-t/internal/logging"
	"github.com/justyntemme/tome-t/internal/ui/terminal"
	"github.com/justyntemme/tome-t/internal/viewer"
)

// turnInput relays page-turn input to a viewer: arrow keys and mouse swipes
// go through the shell, and intents are read under the reading direction.
// The wheel always moves in reading order.
type turnInput struct {
	shell  *viewer.Shell
	cellW  int
	cellH  int
	logger *slog.Logger
}

func newTurnInput(cellW, cellH int, logger *slog.Logger) turnInput {
	return turnInput{
		shell:  viewer.NewShell(),
		cellW:  cellW,
		cellH:  cellH,
		logger: logging.OrDiscard(logger),
	}
}

// key turns for an arrow key; ok is false for any other key
func (t turnInput) key(nav viewer.Navigator, dir viewer.Direction, key string) bool {
	intent, ok := t.shell.Key(key)
	if !ok {
		return false
	}
	t.turn(nav, dir, intent)
	return true
}

// turn applies a physical intent
func (t turnInput) turn(nav viewer.Navigator, dir viewer.Direction, intent viewer.Intent) {
	viewer.Navigate(nav, dir, intent)
	t.logger.Debug("turn", "intent", intent, "direction", dir, "progress", nav.ProgressFraction())
}

// mouse treats a left button press and release as a touch. It reports
// whether nav moved.
func (t turnInput) mouse(nav viewer.Navigator, dir viewer.Direction, msg tea.MouseMsg) bool {
	x, _ := terminal.PixelSize(msg.X, 0, t.cellW, t.cellH)

	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		t.shell.TouchStart(float64(x))
	case msg.Action == tea.MouseActionRelease:
		if intent, ok := t.shell.TouchEnd(float64(x)); ok {
			t.turn(nav, dir, intent)
			return true
		}
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonWheelDown:
		nav.Advance(true)
		return true
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonWheelUp:
		nav.Advance(false)
		return true
	}
	return false
}

// cancel drops a touch in progress, e.g. when an overlay takes the input
func (t turnInput) cancel() {
	t.shell.Cancel()
}
