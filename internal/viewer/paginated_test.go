package viewer

import (
	"math"
	"reflect"
	"testing"
)

type progressCall struct {
	path     string
	position string
	fraction float64
}

type recordingNotifier struct {
	access   []string
	progress []progressCall
}

func (r *recordingNotifier) Access(path string) {
	r.access = append(r.access, path)
}

func (r *recordingNotifier) Progress(path, position string, fraction float64) {
	r.progress = append(r.progress, progressCall{path, position, fraction})
}

func (r *recordingNotifier) last() progressCall {
	return r.progress[len(r.progress)-1]
}

func TestPaginatedMountReportsAccess(t *testing.T) {
	n := &recordingNotifier{}
	p := NewPaginated("/comics/a.cbz", 1, DefaultOptions(), n)
	p.Mount()
	if !reflect.DeepEqual(n.access, []string{"/comics/a.cbz"}) {
		t.Errorf("access = %v", n.access)
	}
	if p.Scale() != 0.5 {
		t.Errorf("initial scale = %v, want 0.5", p.Scale())
	}
}

func TestPaginatedEmptyPathNeverReports(t *testing.T) {
	n := &recordingNotifier{}
	p := NewPaginated("", 1, DefaultOptions(), n)
	p.Mount()
	p.SetTotal(5)
	p.Advance(true)
	p.CommitSlider(4)
	if len(n.access) != 0 || len(n.progress) != 0 {
		t.Errorf("expected no reports, got %v / %v", n.access, n.progress)
	}
}

func TestPaginatedProgressBeforeCount(t *testing.T) {
	n := &recordingNotifier{}
	p := NewPaginated("/a.cbz", 1, DefaultOptions(), n)
	p.Mount()

	if p.SliderMax() != SliderSentinel {
		t.Fatalf("SliderMax = %d, want sentinel", p.SliderMax())
	}
	p.Advance(true)
	got := n.last()
	if got.position != "2" {
		t.Errorf("position = %q, want 2", got.position)
	}
	if want := 2.0 / SliderSentinel; math.Abs(got.fraction-want) > 1e-12 {
		t.Errorf("fraction = %v, want %v", got.fraction, want)
	}
}

func TestPaginatedSpreadNavigation(t *testing.T) {
	n := &recordingNotifier{}
	opts := ViewerOptions{Direction: LTR, Spread: SpreadOdd, FontSize: DefaultFontSize}
	p := NewPaginated("/a.cbz", 3, opts, n)
	p.Mount()
	p.SetTotal(10)

	if !reflect.DeepEqual(p.DisplayPages(), []int{3, 4}) {
		t.Errorf("DisplayPages = %v", p.DisplayPages())
	}
	Navigate(p, p.Options().Direction, IntentRight)
	if p.Current() != 5 {
		t.Errorf("Current = %d, want 5", p.Current())
	}
	if got := n.last(); got.position != "5" || math.Abs(got.fraction-0.5) > 1e-12 {
		t.Errorf("progress = %+v", got)
	}

	p.SetOptions(ViewerOptions{Direction: RTL, Spread: SpreadOdd, FontSize: DefaultFontSize})
	if !reflect.DeepEqual(p.DisplayPages(), []int{6, 5}) {
		t.Errorf("RTL DisplayPages = %v", p.DisplayPages())
	}
	Navigate(p, p.Options().Direction, IntentLeft)
	if p.Current() != 7 {
		t.Errorf("RTL left should go forward, Current = %d", p.Current())
	}
}

func TestPaginatedFirstLast(t *testing.T) {
	n := &recordingNotifier{}
	p := NewPaginated("/a.pdf", 4, DefaultOptions(), n)
	p.Mount()

	p.Last()
	if len(n.progress) != 0 {
		t.Error("Last must be a no-op while the count is unknown")
	}

	p.SetTotal(12)
	p.Last()
	if p.Current() != 12 || n.last().fraction != 1 {
		t.Errorf("Last: current %d, progress %+v", p.Current(), n.last())
	}
	p.First()
	if p.Current() != 1 || n.last().position != "1" {
		t.Errorf("First: current %d, progress %+v", p.Current(), n.last())
	}
}

func TestPaginatedSlider(t *testing.T) {
	n := &recordingNotifier{}
	p := NewPaginated("/a.cbr", 1, DefaultOptions(), n)
	p.Mount()
	p.SetTotal(20)

	p.DragSlider(15)
	if p.Slider() != 15 || p.Current() != 1 {
		t.Errorf("drag: slider %d current %d", p.Slider(), p.Current())
	}
	if len(n.progress) != 0 {
		t.Error("dragging must not report")
	}

	p.CommitSlider(50)
	if p.Current() != 20 || n.last().position != "20" {
		t.Errorf("commit clamps to total: current %d", p.Current())
	}
	p.CommitSlider(-3)
	if p.Current() != 1 {
		t.Errorf("commit clamps to 1: current %d", p.Current())
	}
}

func TestPaginatedSetTotalResetsOutOfRange(t *testing.T) {
	p := NewPaginated("/a.cbz", 40, DefaultOptions(), &recordingNotifier{})
	p.SetTotal(10)
	if p.Current() != 1 || p.Slider() != 1 {
		t.Errorf("current %d slider %d, want 1", p.Current(), p.Slider())
	}

	p.SetTotal(0)
	if p.Total() != 10 {
		t.Error("a non-positive count must be ignored")
	}
}

func TestPaginatedSetTotalClampsTurnedPages(t *testing.T) {
	n := &recordingNotifier{}
	p := NewPaginated("/c.cbz", 1, DefaultOptions(), n)
	p.Mount()
	for range 12 {
		p.Advance(true)
	}
	if p.Current() != 13 {
		t.Fatalf("current before count = %d, want 13", p.Current())
	}

	p.SetTotal(10)
	if p.Current() != 10 || p.Slider() != 10 {
		t.Errorf("current %d slider %d, want 10", p.Current(), p.Slider())
	}
	if got := n.last(); got.position != "10" || got.fraction != 1 {
		t.Errorf("corrected progress = %+v, want position 10 at 1.0", got)
	}

	// A page inside the book is left alone and not reported again
	calls := len(n.progress)
	q := NewPaginated("/c.cbz", 1, DefaultOptions(), n)
	q.Mount()
	q.Advance(true)
	q.SetTotal(10)
	if q.Current() != 2 || len(n.progress) != calls+1 {
		t.Errorf("current %d, progress calls %d, want 2 and %d", q.Current(), len(n.progress), calls+1)
	}
}

func TestPaginatedUnmountStopsReports(t *testing.T) {
	n := &recordingNotifier{}
	p := NewPaginated("/a.cbz", 1, DefaultOptions(), n)
	p.Mount()
	p.SetTotal(5)
	p.Advance(true)
	p.Unmount()
	p.Advance(true)
	p.CommitSlider(5)
	if len(n.progress) != 1 {
		t.Errorf("progress calls = %d, want 1", len(n.progress))
	}
}

func TestPaginatedFit(t *testing.T) {
	p := NewPaginated("/a.cbz", 1, DefaultOptions(), &recordingNotifier{})
	p.SetTotal(3)
	if got := p.Fit(Size{800, 1200}, Size{1600, 900}); got != 0.75 {
		t.Errorf("Fit = %v, want 0.75", got)
	}
	if p.Scale() != 0.75 {
		t.Errorf("Scale = %v", p.Scale())
	}
}
