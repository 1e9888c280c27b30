package terminal

import (
	"bytes"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"

	"github.com/BourgeoisBear/rasterm"
)

// ImageMode represents the terminal's image display capability
type ImageMode int

const (
	// ModeNone indicates no image support
	ModeNone ImageMode = iota
	// ModeKitty indicates Kitty graphics protocol support
	ModeKitty
	// ModeIterm indicates iTerm2 graphics protocol support
	ModeIterm
	// ModeSixel indicates Sixel graphics protocol support
	ModeSixel
)

// PageImageID is a stable Kitty image ID for the displayed page, so a redraw
// replaces the previous page instead of stacking on top of it.
const PageImageID uint32 = 4242

// Default cell geometry in pixels, used when the config does not override it.
const (
	DefaultCellWidth  = 10
	DefaultCellHeight = 20
)

// String returns a human-readable name for the terminal mode
func (m ImageMode) String() string {
	switch m {
	case ModeKitty:
		return "Kitty"
	case ModeIterm:
		return "iTerm2"
	case ModeSixel:
		return "Sixel"
	default:
		return "None"
	}
}

// DetectMode checks which image protocol the terminal supports
func DetectMode() ImageMode {
	if rasterm.IsKittyCapable() {
		return ModeKitty
	}
	if rasterm.IsItermCapable() {
		return ModeIterm
	}
	if capable, _ := rasterm.IsSixelCapable(); capable {
		return ModeSixel
	}
	return ModeNone
}

// ImageToPaletted converts an image to a paletted image required for Sixel
func ImageToPaletted(img image.Image) *image.Paletted {
	bounds := img.Bounds()
	paletted := image.NewPaletted(bounds, palette.Plan9)
	draw.Draw(paletted, bounds, img, bounds.Min, draw.Src)
	return paletted
}

// Render encodes img as an escape sequence for the given mode. ModeNone
// renders nothing.
func Render(img image.Image, mode ImageMode) (string, error) {
	var buf bytes.Buffer
	var err error

	switch mode {
	case ModeKitty:
		err = rasterm.KittyWriteImage(&buf, img, rasterm.KittyImgOpts{ImageId: PageImageID})
	case ModeIterm:
		err = rasterm.ItermWriteImage(&buf, img)
	case ModeSixel:
		// Written to a buffer, not stdout, so bubbletea owns the screen
		err = rasterm.SixelWriteImage(&buf, ImageToPaletted(img))
	default:
		return "", nil
	}

	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ClearPage returns the escape sequence that removes the displayed page
// without touching the header line.
func ClearPage(mode ImageMode) string {
	switch mode {
	case ModeKitty:
		return fmt.Sprintf("\x1b_Ga=d,i=%d\x1b\\", PageImageID)
	case ModeIterm, ModeSixel:
		// Images live in the character grid: clear from line 2 down
		return "\x1b[2;1H\x1b[J"
	default:
		return ""
	}
}

// ClearAll returns the escape sequence that removes every image, for use when
// leaving an image view.
func ClearAll(mode ImageMode) string {
	switch mode {
	case ModeKitty:
		return "\x1b_Ga=d,d=A\x1b\\"
	case ModeIterm, ModeSixel:
		return "\x1b[2J\x1b[H"
	default:
		return ""
	}
}

// PixelSize converts a cell grid into pixels. Non-positive cell sizes fall
// back to the defaults.
func PixelSize(cols, rows, cellW, cellH int) (int, int) {
	if cellW <= 0 {
		cellW = DefaultCellWidth
	}
	if cellH <= 0 {
		cellH = DefaultCellHeight
	}
	return max(cols, 0) * cellW, max(rows, 0) * cellH
}
