package viewer

import (
	"math"
	"reflect"
	"testing"
)

func TestFitScale(t *testing.T) {
	tests := []struct {
		name     string
		page     Size
		spread   bool
		viewport Size
		want     float64
	}{
		{"tall page in wide viewport is height bound", Size{800, 1200}, false, Size{1600, 900}, 0.75},
		{"spread in narrow viewport is width bound", Size{800, 1200}, true, Size{800, 1200}, 0.5},
		{"wide page is width bound", Size{2000, 1000}, false, Size{1000, 1000}, 0.5},
		{"spread in wide viewport is height bound", Size{500, 1000}, true, Size{3000, 500}, 0.5},
		{"invalid page", Size{0, 100}, false, Size{100, 100}, 1},
		{"invalid viewport", Size{100, 100}, false, Size{100, 0}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FitScale(tt.page, tt.spread, tt.viewport)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("FitScale = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFitScaleNeverOverflows(t *testing.T) {
	viewports := []Size{{1600, 900}, {900, 1600}, {1000, 1000}, {320, 200}}
	pages := []Size{{800, 1200}, {1200, 800}, {500, 500}, {100, 3000}}

	for _, vp := range viewports {
		for _, pg := range pages {
			for _, spread := range []bool{false, true} {
				s := FitScale(pg, spread, vp)
				w := float64(pg.Width) * s
				if spread {
					w *= 2
				}
				h := float64(pg.Height) * s
				if w > float64(vp.Width)+1e-6 || h > float64(vp.Height)+1e-6 {
					t.Errorf("page %v spread %v in %v: content %.1fx%.1f overflows", pg, spread, vp, w, h)
				}
			}
		}
	}
}

func TestPrefetchPages(t *testing.T) {
	tests := []struct {
		name  string
		std   int
		total int
		want  []int
	}{
		{"middle of book", 5, 10, []int{4, 3, 6, 7, 8}},
		{"first page", 1, 10, []int{2, 3, 4}},
		{"second page", 2, 10, []int{1, 3, 4, 5}},
		{"near the end", 9, 10, []int{8, 7, 10}},
		{"last page", 10, 10, []int{9, 8}},
		{"unknown total looks back only", 5, UnknownTotal, []int{4, 3, 1}},
		{"single page book", 1, 1, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PrefetchPages(tt.std, tt.total)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PrefetchPages(%d, %d) = %v, want %v", tt.std, tt.total, got, tt.want)
			}
		})
	}
}
