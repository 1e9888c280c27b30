package viewer

import "strconv"

// SliderSentinel stands in for the page count while it is unknown. It keeps
// the slider usable and keeps reported fractions near zero until the real
// count arrives.
const SliderSentinel = 99999

// Notifier receives best-effort access and progress notifications
type Notifier interface {
	Access(path string)
	Progress(path, position string, fraction float64)
}

// Paginated is the page state of one image-based viewer (CBR, CBZ, PDF).
// It is owned by a single mounted view and is not safe for concurrent use.
type Paginated struct {
	path     string
	notifier Notifier
	opts     ViewerOptions
	mounted  bool

	current int
	total   int // UnknownTotal until the page count arrives
	scale   float64
	slider  int
	moved   bool // the reader has navigated since the session started
}

// NewPaginated creates page state for the book at path, starting on initialPage
func NewPaginated(path string, initialPage int, opts ViewerOptions, notifier Notifier) *Paginated {
	return &Paginated{
		path:     path,
		notifier: notifier,
		opts:     opts,
		current:  initialPage,
		scale:    0.5,
		slider:   initialPage,
	}
}

// Mount starts the viewer session and reports the access
func (p *Paginated) Mount() {
	p.mounted = true
	if p.path != "" {
		p.notifier.Access(p.path)
	}
}

// Unmount ends the session; no further reports are sent
func (p *Paginated) Unmount() {
	p.mounted = false
}

// Mounted reports whether the session is live
func (p *Paginated) Mounted() bool {
	return p.mounted
}

// Path returns the book path used for reporting
func (p *Paginated) Path() string {
	return p.path
}

// Options returns the active viewer options
func (p *Paginated) Options() ViewerOptions {
	return p.opts
}

// SetOptions applies options changed through the options panel
func (p *Paginated) SetOptions(opts ViewerOptions) {
	p.opts = opts
}

// SetTotal records the fetched page count. An untouched initial page
// outside the book falls back to page 1; a page the reader turned past the
// end is clamped to the last page and reported again.
func (p *Paginated) SetTotal(total int) {
	if total < 1 {
		return
	}
	p.total = total
	if !p.moved {
		if p.current < 1 || p.current > total {
			p.current = 1
			p.slider = 1
		}
		return
	}
	if p.current > total {
		p.current = total
		p.slider = total
		p.report()
	}
	p.slider = min(p.slider, total)
}

// Total returns the page count, or UnknownTotal
func (p *Paginated) Total() int {
	return p.total
}

// Current returns the raw current page
func (p *Paginated) Current() int {
	return p.current
}

// Scale returns the last auto-fit scale
func (p *Paginated) Scale() float64 {
	return p.scale
}

// Slider returns the slider position
func (p *Paginated) Slider() int {
	return p.slider
}

// SliderMax returns the slider's upper bound
func (p *Paginated) SliderMax() int {
	if p.total == UnknownTotal {
		return SliderSentinel
	}
	return p.total
}

// StandardPage returns the first page of what is on screen
func (p *Paginated) StandardPage() int {
	return Standardize(p.current, p.opts.Spread)
}

// IsSpread reports whether two pages are on screen
func (p *Paginated) IsSpread() bool {
	return IsSpread(p.StandardPage(), p.opts.Spread, p.total)
}

// DisplayPages returns the pages on screen in left-to-right visual order
func (p *Paginated) DisplayPages() []int {
	std := p.StandardPage()
	if !p.IsSpread() {
		return []int{std}
	}
	if p.opts.Direction == RTL {
		return []int{std + 1, std}
	}
	return []int{std, std + 1}
}

// PrefetchPages returns the neighbourhood to warm around the current spread
func (p *Paginated) PrefetchPages() []int {
	return PrefetchPages(p.StandardPage(), p.total)
}

// Advance turns one page (or spread) and reports the new position
func (p *Paginated) Advance(forward bool) {
	p.goTo(Advance(forward, p.current, p.opts.Spread, p.total))
}

// First jumps to page 1
func (p *Paginated) First() {
	p.goTo(1)
}

// Last jumps to the final page once the count is known
func (p *Paginated) Last() {
	if p.total == UnknownTotal {
		return
	}
	p.goTo(p.total)
}

// DragSlider moves the slider without committing a page change
func (p *Paginated) DragSlider(value int) {
	p.slider = p.clampSlider(value)
}

// CommitSlider jumps to the slider value and reports it
func (p *Paginated) CommitSlider(value int) {
	value = p.clampSlider(value)
	p.slider = value
	p.current = value
	p.moved = true
	p.report()
}

// Fit computes and stores the scale for a loaded primary page image
func (p *Paginated) Fit(page, viewport Size) float64 {
	p.scale = FitScale(page, p.IsSpread(), viewport)
	return p.scale
}

// ProgressFraction returns current/total, using the sentinel denominator
// while the total is unknown
func (p *Paginated) ProgressFraction() float64 {
	return float64(p.current) / float64(p.SliderMax())
}

func (p *Paginated) goTo(page int) {
	p.moved = true
	p.current = page
	p.slider = page
	p.report()
}

func (p *Paginated) report() {
	if !p.mounted || p.path == "" {
		return
	}
	p.notifier.Progress(p.path, strconv.Itoa(p.current), p.ProgressFraction())
}

func (p *Paginated) clampSlider(value int) int {
	return min(max(value, 1), p.SliderMax())
}
