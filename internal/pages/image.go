package pages

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Decode decodes page bytes in any registered image format
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	return img, nil
}

// Compose places images side by side in the given visual order. Each image
// is scaled to the tallest height so a spread lines up.
func Compose(imgs ...image.Image) image.Image {
	switch len(imgs) {
	case 0:
		return nil
	case 1:
		return imgs[0]
	}

	height := 0
	for _, img := range imgs {
		height = max(height, img.Bounds().Dy())
	}

	scaled := make([]image.Image, len(imgs))
	width := 0
	for i, img := range imgs {
		if img.Bounds().Dy() != height {
			img = imaging.Resize(img, 0, height, imaging.Lanczos)
		}
		scaled[i] = img
		width += img.Bounds().Dx()
	}

	dst := imaging.New(width, height, color.White)
	x := 0
	for _, img := range scaled {
		dst = imaging.Paste(dst, img, image.Pt(x, 0))
		x += img.Bounds().Dx()
	}
	return dst
}

// Scale resizes img by factor; factors that round to an empty image or to
// the same size return img unchanged
func Scale(img image.Image, factor float64) image.Image {
	b := img.Bounds()
	w := int(float64(b.Dx()) * factor)
	h := int(float64(b.Dy()) * factor)
	if w < 1 || h < 1 || (w == b.Dx() && h == b.Dy()) {
		return img
	}
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

// Zoom crops img to 1/zoom of its size around a pan position, where panX and
// panY run from 0 (left, top) to 1 (right, bottom). A zoom of 1 or less
// returns img.
func Zoom(img image.Image, zoom, panX, panY float64) image.Image {
	if zoom <= 1 {
		return img
	}
	b := img.Bounds()
	w := max(int(float64(b.Dx())/zoom), 1)
	h := max(int(float64(b.Dy())/zoom), 1)

	panX = min(max(panX, 0), 1)
	panY = min(max(panY, 0), 1)
	x := b.Min.X + int(panX*float64(b.Dx()-w))
	y := b.Min.Y + int(panY*float64(b.Dy()-h))
	return imaging.Crop(img, image.Rect(x, y, x+w, y+h))
}
