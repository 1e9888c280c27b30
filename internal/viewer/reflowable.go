package viewer

// LocationIndex converts between location tokens and book percentages.
// It only exists once the whole book has been indexed.
type LocationIndex interface {
	PercentageFromToken(token string) float64
	TokenFromPercentage(p float64) string
}

// Surface is the rendering surface of reflowable content
type Surface interface {
	Next() (string, bool)
	Prev() (string, bool)
	Display(token string) string
}

// IndexState tracks location index generation
type IndexState int

const (
	IndexPending IndexState = iota
	Indexed
)

// Reflowable is the location state of one EPUB viewer. Before the location
// index is built, slider moves only change the slider and nothing is reported.
type Reflowable struct {
	path     string
	notifier Notifier
	opts     ViewerOptions
	mounted  bool

	surface    Surface
	index      LocationIndex
	location   string
	percentage float64
	slider     float64
}

// NewReflowable creates location state for the book at path
func NewReflowable(path string, opts ViewerOptions, notifier Notifier) *Reflowable {
	return &Reflowable{
		path:     path,
		notifier: notifier,
		opts:     opts,
	}
}

// Mount starts the viewer session and reports the access
func (r *Reflowable) Mount() {
	r.mounted = true
	if r.path != "" {
		r.notifier.Access(r.path)
	}
}

// Unmount ends the session; no further reports are sent
func (r *Reflowable) Unmount() {
	r.mounted = false
}

// Path returns the book path used for reporting
func (r *Reflowable) Path() string {
	return r.path
}

// Options returns the active viewer options
func (r *Reflowable) Options() ViewerOptions {
	return r.opts
}

// SetOptions applies options changed through the options panel
func (r *Reflowable) SetOptions(opts ViewerOptions) {
	r.opts = opts
}

// Attach connects the rendering surface once the document is open
func (r *Reflowable) Attach(s Surface) {
	r.surface = s
}

// Surface returns the attached rendering surface, if any
func (r *Reflowable) Surface() Surface {
	return r.surface
}

// State returns the index generation state
func (r *Reflowable) State() IndexState {
	if r.index == nil {
		return IndexPending
	}
	return Indexed
}

// LocationsGenerated finishes indexing and syncs the slider to the
// current location without reporting.
func (r *Reflowable) LocationsGenerated(index LocationIndex) {
	r.index = index
	if r.location != "" {
		r.percentage = index.PercentageFromToken(r.location)
		r.slider = r.percentage
	}
}

// Location returns the current location token
func (r *Reflowable) Location() string {
	return r.location
}

// Percentage returns the position in the book; zero until indexed
func (r *Reflowable) Percentage() float64 {
	return r.percentage
}

// Slider returns the slider position in [0, 1]
func (r *Reflowable) Slider() float64 {
	return r.slider
}

// LocationChanged records a new location from reading or jumping. Once
// indexed, the slider follows and progress is reported.
func (r *Reflowable) LocationChanged(token string) {
	r.location = token
	if r.index == nil {
		return
	}
	r.percentage = r.index.PercentageFromToken(token)
	r.slider = r.percentage
	if r.mounted && r.path != "" {
		r.notifier.Progress(r.path, token, r.percentage)
	}
}

// Advance moves the surface one screen and records the new location
func (r *Reflowable) Advance(forward bool) {
	if r.surface == nil {
		return
	}
	var token string
	var ok bool
	if forward {
		token, ok = r.surface.Next()
	} else {
		token, ok = r.surface.Prev()
	}
	if ok {
		r.LocationChanged(token)
	}
}

// DragSlider moves the slider without repositioning the document
func (r *Reflowable) DragSlider(p float64) {
	r.slider = clampUnit(p)
}

// CommitSlider jumps to the slider position. It is a no-op for the document
// until the index exists.
func (r *Reflowable) CommitSlider(p float64) {
	r.slider = clampUnit(p)
	if r.index == nil || r.surface == nil {
		return
	}
	token := r.surface.Display(r.index.TokenFromPercentage(r.slider))
	r.LocationChanged(token)
}

// Restore displays a saved location, e.g. the library entry's position,
// without treating it as a reading action
func (r *Reflowable) Restore(token string) {
	if r.surface == nil {
		return
	}
	r.location = r.surface.Display(token)
	if r.index != nil {
		r.percentage = r.index.PercentageFromToken(r.location)
		r.slider = r.percentage
	}
}

// ProgressFraction returns the indexed percentage
func (r *Reflowable) ProgressFraction() float64 {
	return r.percentage
}

func clampUnit(p float64) float64 {
	return min(max(p, 0), 1)
}
