package views

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/justyntemme/tome-t/internal/pages"
	"github.com/justyntemme/tome-t/internal/storage"
	"github.com/justyntemme/tome-t/internal/viewer"
)

type fakeSource struct {
	mu       sync.Mutex
	total    int
	countErr error
	data     []byte
	calls    []int
}

func (f *fakeSource) PageCount(context.Context) (int, error) {
	return f.total, f.countErr
}

func (f *fakeSource) Page(_ context.Context, page int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, page)
	return f.data, nil
}

func (f *fakeSource) pageCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type progressCall struct {
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

func (r *recordingNotifier) Progress(_, position string, fraction float64) {
	r.progress = append(r.progress, progressCall{position, fraction})
}

func newTestPager(t *testing.T, src *fakeSource) (*PagerView, *recordingNotifier) {
	t.Helper()
	n := &recordingNotifier{}
	state := viewer.NewPaginated("/comics/a.cbz", 1, viewer.DefaultOptions(), n)
	panel := NewOptionsPanel(viewer.NewOptionsStore(storage.NewMemory(), nil))
	v := NewPagerView("A", state, pages.NewLoader(src, 8, nil), panel, 10, 20, nil)
	v.Init()
	return v, n
}

func TestPagerViewPageCount(t *testing.T) {
	tests := []struct {
		name      string
		msg       pageCountMsg
		wantTotal int
		wantMax   int
	}{
		{"failed count", pageCountMsg{err: errors.New("boom")}, viewer.UnknownTotal, viewer.SliderSentinel},
		{"known count", pageCountMsg{total: 12}, 12, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, n := newTestPager(t, &fakeSource{data: pngBytes(t, 4, 6)})
			v.Update(tt.msg)

			if got := v.State().Total(); got != tt.wantTotal {
				t.Errorf("Total() = %d, want %d", got, tt.wantTotal)
			}
			if got := v.State().SliderMax(); got != tt.wantMax {
				t.Errorf("SliderMax() = %d, want %d", got, tt.wantMax)
			}

			// Turning pages keeps working either way
			v.Update(tea.KeyMsg{Type: tea.KeyRight})
			if got := v.State().Current(); got != 2 {
				t.Errorf("Current() after right = %d, want 2", got)
			}
			if len(n.progress) != 1 || n.progress[0].position != "2" {
				t.Errorf("progress = %+v, want one report at 2", n.progress)
			}
		})
	}
}

func TestPagerViewDropsStaleImages(t *testing.T) {
	v, _ := newTestPager(t, &fakeSource{data: pngBytes(t, 4, 6)})
	img := image.NewRGBA(image.Rect(0, 0, 4, 6))

	v.Update(pageImagesMsg{pages: []int{5}, shown: []int{5}, imgs: []image.Image{img}})
	if v.composed != nil {
		t.Fatal("images for page 5 were shown while page 1 is wanted")
	}

	v.Update(pageImagesMsg{pages: []int{1}, shown: []int{1}, imgs: []image.Image{img}})
	if v.composed == nil {
		t.Fatal("images for the wanted page were dropped")
	}
	if v.err != nil {
		t.Errorf("err = %v", v.err)
	}
}

func TestPagerViewShowsCachedPages(t *testing.T) {
	src := &fakeSource{total: 3, data: pngBytes(t, 4, 6)}
	v, _ := newTestPager(t, src)

	if err := v.loader.Prefetch(context.Background(), []int{2}); err != nil {
		t.Fatal(err)
	}
	v.Update(tea.KeyMsg{Type: tea.KeyRight})
	if v.composed == nil {
		t.Fatal("prefetched page 2 was not shown right away")
	}
	if got := src.pageCalls(); got != 1 {
		t.Errorf("page fetches = %d, want 1", got)
	}
}

func TestPagerViewClose(t *testing.T) {
	src := &fakeSource{total: 10, data: pngBytes(t, 4, 6)}
	v, n := newTestPager(t, src)

	_, cmd := v.Update(pageCountMsg{total: 10})
	if cmd == nil {
		t.Fatal("page count started no prefetch")
	}
	v.Close()

	if v.ctx.Err() == nil {
		t.Error("context still live after Close")
	}
	msg, ok := cmd().(prefetchDoneMsg)
	if !ok || msg.err == nil {
		t.Errorf("prefetch after Close = %+v, want cancelled", msg)
	}
	if got := src.pageCalls(); got != 0 {
		t.Errorf("page fetches after Close = %d, want 0", got)
	}

	v.Update(tea.KeyMsg{Type: tea.KeyRight})
	if len(n.progress) != 0 {
		t.Errorf("progress after Close = %+v", n.progress)
	}
}

type countingNavigator struct {
	forward, backward int
}

func (c *countingNavigator) Advance(forward bool) {
	if forward {
		c.forward++
	} else {
		c.backward++
	}
}

func (c *countingNavigator) ProgressFraction() float64 { return 0 }

func TestTurnInput(t *testing.T) {
	press := func(x int) tea.MouseMsg {
		return tea.MouseMsg{X: x, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	}
	release := func(x int) tea.MouseMsg {
		return tea.MouseMsg{X: x, Action: tea.MouseActionRelease}
	}

	tests := []struct {
		name         string
		do           func(in turnInput, nav viewer.Navigator)
		wantForward  int
		wantBackward int
	}{
		{"right arrow ltr", func(in turnInput, nav viewer.Navigator) {
			in.key(nav, viewer.LTR, "right")
		}, 1, 0},
		{"right arrow rtl", func(in turnInput, nav viewer.Navigator) {
			in.key(nav, viewer.RTL, "right")
		}, 0, 1},
		{"left arrow rtl", func(in turnInput, nav viewer.Navigator) {
			in.key(nav, viewer.RTL, "left")
		}, 1, 0},
		{"other key", func(in turnInput, nav viewer.Navigator) {
			in.key(nav, viewer.LTR, "x")
		}, 0, 0},
		{"swipe right ltr", func(in turnInput, nav viewer.Navigator) {
			in.mouse(nav, viewer.LTR, press(1))
			in.mouse(nav, viewer.LTR, release(20))
		}, 0, 1},
		{"swipe right rtl", func(in turnInput, nav viewer.Navigator) {
			in.mouse(nav, viewer.RTL, press(1))
			in.mouse(nav, viewer.RTL, release(20))
		}, 1, 0},
		{"short drag", func(in turnInput, nav viewer.Navigator) {
			in.mouse(nav, viewer.LTR, press(10))
			in.mouse(nav, viewer.LTR, release(12))
		}, 0, 0},
		{"cancelled swipe", func(in turnInput, nav viewer.Navigator) {
			in.mouse(nav, viewer.LTR, press(20))
			in.cancel()
			in.mouse(nav, viewer.LTR, release(1))
		}, 0, 0},
		{"wheel rtl", func(in turnInput, nav viewer.Navigator) {
			in.mouse(nav, viewer.RTL, tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
		}, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nav := &countingNavigator{}
			in := newTurnInput(10, 20, nil)
			tt.do(in, nav)
			if nav.forward != tt.wantForward || nav.backward != tt.wantBackward {
				t.Errorf("forward/backward = %d/%d, want %d/%d",
					nav.forward, nav.backward, tt.wantForward, tt.wantBackward)
			}
		})
	}
}
