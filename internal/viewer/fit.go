package viewer

// Size is a width/height pair in pixels
type Size struct {
	Width  int
	Height int
}

// Valid returns true if both dimensions are positive
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// FitScale returns the scale at which a page (or two side-by-side pages
// when spread is set) fits entirely inside viewport. The binding dimension
// wins: wide content is fit to the viewport width, tall content to its
// height. Invalid sizes yield 1.
func FitScale(page Size, spread bool, viewport Size) float64 {
	if !page.Valid() || !viewport.Valid() {
		return 1
	}

	contentWidth := float64(page.Width)
	if spread {
		contentWidth *= 2
	}
	contentAspect := contentWidth / float64(page.Height)
	viewportAspect := float64(viewport.Width) / float64(viewport.Height)

	if contentAspect > viewportAspect {
		return float64(viewport.Width) / contentWidth
	}
	return float64(viewport.Height) / float64(page.Height)
}
