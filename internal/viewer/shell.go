package viewer

import "math"

// SwipeThreshold is the horizontal travel, in pixels, that turns a touch
// into a swipe
const SwipeThreshold = 50

// ShellState is the gesture state of a Shell
type ShellState int

const (
	ShellIdle ShellState = iota
	ShellTouchStarted
)

// Shell turns raw key and touch input into left/right intents. It knows
// nothing about pages or formats.
type Shell struct {
	state     ShellState
	startX    float64
	threshold float64
}

// NewShell creates a shell with the default swipe threshold
func NewShell() *Shell {
	return &Shell{threshold: SwipeThreshold}
}

// State returns the current gesture state
func (s *Shell) State() ShellState {
	return s.state
}

// Key maps arrow keys to intents regardless of the gesture state
func (s *Shell) Key(key string) (Intent, bool) {
	switch key {
	case "left":
		return IntentLeft, true
	case "right":
		return IntentRight, true
	}
	return 0, false
}

// TouchStart records where a touch began
func (s *Shell) TouchStart(x float64) {
	s.state = ShellTouchStarted
	s.startX = x
}

// TouchEnd finishes a touch. Travel beyond the threshold is a swipe, read
// like a page turn: a finger moving right is the left intent, and pushing
// the content left is the right intent (next page under LTR).
func (s *Shell) TouchEnd(x float64) (Intent, bool) {
	if s.state != ShellTouchStarted {
		return 0, false
	}
	s.state = ShellIdle

	diff := x - s.startX
	if math.Abs(diff) <= s.threshold {
		return 0, false
	}
	if diff > 0 {
		return IntentLeft, true
	}
	return IntentRight, true
}

// Cancel drops a touch in progress
func (s *Shell) Cancel() {
	s.state = ShellIdle
}

// Navigator is what a mounted viewer exposes to the shell
type Navigator interface {
	Advance(forward bool)
	ProgressFraction() float64
}

// Navigate applies an intent to nav under the reading direction
func Navigate(nav Navigator, dir Direction, intent Intent) {
	nav.Advance(dir.Forward(intent))
}
