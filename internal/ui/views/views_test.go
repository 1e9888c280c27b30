package views

import (
	"context"
	"fmt"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/justyntemme/tome-t/internal/library"
	"github.com/justyntemme/tome-t/internal/storage"
	"github.com/justyntemme/tome-t/internal/viewer"
	"github.com/justyntemme/tome-t/pkg/models"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestParseFontSize(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"", viewer.MinFontSize, false},
		{"  ", viewer.MinFontSize, false},
		{"20", 20, false},
		{"2", viewer.MinFontSize, false},
		{"100", viewer.MaxFontSize, false},
		{"big", 0, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.in), func(t *testing.T) {
			got, err := ParseFontSize(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFontSize(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestOptionsPanelSaves(t *testing.T) {
	store := viewer.NewOptionsStore(storage.NewMemory(), nil)
	p := NewOptionsPanel(store)
	p.Open(viewer.DefaultOptions())

	// Direction row is first
	if changed, _ := p.Update(tea.KeyMsg{Type: tea.KeyEnter}); !changed {
		t.Fatal("direction toggle reported no change")
	}
	if got := store.Load().Direction; got != viewer.RTL {
		t.Errorf("saved direction = %q, want rtl", got)
	}

	p.Update(runes("j"))
	p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := store.Load().Spread; got != viewer.SpreadOdd {
		t.Errorf("saved spread = %q, want odd", got)
	}

	// Clearing the font size entry saves the smallest size
	p.Update(runes("j"))
	if changed, _ := p.Update(tea.KeyMsg{Type: tea.KeyEnter}); changed {
		t.Fatal("starting an edit reported a change")
	}
	p.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	p.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if changed, _ := p.Update(tea.KeyMsg{Type: tea.KeyEnter}); !changed {
		t.Fatal("committing the font size reported no change")
	}
	if got := store.Load().FontSize; got != viewer.MinFontSize {
		t.Errorf("saved font size = %d, want %d", got, viewer.MinFontSize)
	}

	p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if p.IsOpen() {
		t.Error("panel still open after esc")
	}
}

type fakeLister struct {
	mu    sync.Mutex
	pages int
	calls []int
}

func (f *fakeLister) ListBooks(_ context.Context, endpoint string, _ models.SortKey, _ models.SortOrder, page int, _ string) (*models.BooksResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, page)
	resp := &models.BooksResponse{HasMore: page < f.pages}
	for i := range 3 {
		resp.Books = append(resp.Books, models.BookEntry{
			Type:  models.BookTypeCBZ,
			Path:  fmt.Sprintf("%s/%d-%d.cbz", endpoint, page, i),
			Title: fmt.Sprintf("Book %d-%d", page, i),
		})
	}
	return resp, nil
}

// drain runs cmd and every command it batches, returning the listing results
func drain(cmd tea.Cmd) []booksLoadedMsg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		var out []booksLoadedMsg
		for _, c := range msg {
			out = append(out, drain(c)...)
		}
		return out
	case booksLoadedMsg:
		return []booksLoadedMsg{msg}
	}
	return nil
}

func TestLibraryViewLoadsPagesUntilExhausted(t *testing.T) {
	lister := &fakeLister{pages: 2}
	v := NewLibraryView(lister, nil, nil)
	v.SetSize(80, 40)

	pending := drain(v.Init())
	for len(pending) > 0 {
		msg := pending[0]
		pending = pending[1:]
		_, cmd := v.Update(msg)
		pending = append(pending, drain(cmd)...)
	}

	if got := len(v.list.Books()); got != 6 {
		t.Errorf("books = %d, want 6", got)
	}
	if v.list.HasMore() {
		t.Error("list still has more after the last page")
	}
	if len(lister.calls) != 2 || lister.calls[0] != 1 || lister.calls[1] != 2 {
		t.Errorf("pages requested = %v, want [1 2]", lister.calls)
	}
}

func TestLibraryViewDropsStaleResults(t *testing.T) {
	lister := &fakeLister{pages: 1}
	v := NewLibraryView(lister, nil, nil)

	first := drain(v.Init())
	if len(first) != 1 {
		t.Fatalf("initial loads = %d, want 1", len(first))
	}
	// Switch listings before the first result arrives
	next := drain(v.SetQuery(library.FolderQuery("/comics")))

	v.Update(first[0])
	if got := len(v.list.Books()); got != 0 {
		t.Fatalf("stale page applied: %d books", got)
	}
	v.Update(next[0])
	books := v.list.Books()
	if len(books) != 3 || books[0].Path != "/api/root/comics/1-0.cbz" {
		t.Errorf("books = %+v", books)
	}
}

func TestLibraryViewOpensFolderInPlace(t *testing.T) {
	v := NewLibraryView(&fakeLister{}, nil, nil)
	v.list.Next()
	v.list.Loaded(library.AllQuery(), 1, &models.BooksResponse{Books: []models.BookEntry{
		{Type: models.BookTypeFolder, Path: "/manga"},
	}})

	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := v.Query().Folder(); got != "/manga" {
		t.Errorf("folder = %q, want /manga", got)
	}

	// Backspace returns to the parent
	v.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if got := v.Query().Folder(); got != "/" {
		t.Errorf("folder after backspace = %q, want /", got)
	}
}

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		progress float64
		filled   int
	}{
		{0, 0},
		{0.5, 5},
		{1, 10},
		{1.5, 10},
	}
	for _, tt := range tests {
		bar := renderProgressBar(10, tt.progress)
		n := 0
		for _, r := range bar {
			if r == '█' {
				n++
			}
		}
		if n != tt.filled {
			t.Errorf("renderProgressBar(10, %v) filled %d cells, want %d", tt.progress, n, tt.filled)
		}
	}
}
