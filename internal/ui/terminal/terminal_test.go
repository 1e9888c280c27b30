package terminal

import (
	"image"
	"strings"
	"testing"
)

func TestPixelSize(t *testing.T) {
	tests := []struct {
		name                     string
		cols, rows, cellW, cellH int
		wantW, wantH             int
	}{
		{"configured cells", 80, 24, 8, 16, 640, 384},
		{"defaults", 80, 24, 0, 0, 80 * DefaultCellWidth, 24 * DefaultCellHeight},
		{"negative grid", -1, 10, 8, 16, 0, 160},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := PixelSize(tt.cols, tt.rows, tt.cellW, tt.cellH)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("PixelSize = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestRenderNoneIsEmpty(t *testing.T) {
	out, err := Render(image.NewRGBA(image.Rect(0, 0, 4, 4)), ModeNone)
	if err != nil || out != "" {
		t.Errorf("Render(ModeNone) = %q, %v", out, err)
	}
}

func TestRenderKittyUsesPageID(t *testing.T) {
	out, err := Render(image.NewRGBA(image.Rect(0, 0, 4, 4)), ModeKitty)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out == "" {
		t.Error("kitty output is empty")
	}
	if !strings.Contains(ClearPage(ModeKitty), "i=4242") {
		t.Errorf("ClearPage(ModeKitty) = %q", ClearPage(ModeKitty))
	}
}

func TestClearSequences(t *testing.T) {
	if ClearPage(ModeNone) != "" || ClearAll(ModeNone) != "" {
		t.Error("ModeNone should not emit clear sequences")
	}
	if ClearAll(ModeSixel) == "" {
		t.Error("ModeSixel should clear the screen")
	}
}
