package epub

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/justyntemme/tome-t/internal/report"
	"github.com/justyntemme/tome-t/internal/viewer"
)

type testChapter struct {
	name string
	body string
}

// buildEPUB assembles a minimal EPUB with the given chapters in spine order
func buildEPUB(t *testing.T, chapters ...testChapter) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	write := func(name, content string) {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		fw.Write([]byte(content))
	}

	mw, err := w.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		t.Fatal(err)
	}
	mw.Write([]byte("application/epub+zip"))

	write("META-INF/container.xml", `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`)

	var manifest, spine strings.Builder
	for i, ch := range chapters {
		id := fmt.Sprintf("c%d", i)
		fmt.Fprintf(&manifest, `<item id="%s" href="text/%s" media-type="application/xhtml+xml"/>`, id, ch.name)
		fmt.Fprintf(&spine, `<itemref idref="%s"/>`, id)
		write("OEBPS/text/"+ch.name, `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml"><head><title>`+ch.name+`</title></head>
<body>`+ch.body+`</body></html>`)
	}
	manifest.WriteString(`<item id="css" href="style.css" media-type="text/css"/>`)
	write("OEBPS/style.css", "p { margin: 0 }")

	write("OEBPS/content.opf", `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title> Test Book </dc:title></metadata>
  <manifest>`+manifest.String()+`</manifest>
  <spine>`+spine.String()+`</spine>
</package>`)

	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func longParagraph() string {
	return strings.TrimSpace(strings.Repeat("abcd ", 500))
}

func TestOpen(t *testing.T) {
	data := buildEPUB(t,
		testChapter{"one.xhtml", `<h1>Chapter  One</h1><p>First
			paragraph.</p><ul><li><p>Nested item</p></li></ul><script>var x = 1;</script>`},
		testChapter{"two.xhtml", `<div>Loose text only</div>`},
	)

	book, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if book.Title != "Test Book" {
		t.Errorf("Title = %q", book.Title)
	}
	if len(book.Chapters) != 2 {
		t.Fatalf("chapters = %d, want 2", len(book.Chapters))
	}

	want := []string{"Chapter One", "First paragraph.", "Nested item"}
	if got := book.Chapters[0].Paragraphs; !reflect.DeepEqual(got, want) {
		t.Errorf("paragraphs = %q, want %q", got, want)
	}
	if got := book.Chapters[1].Paragraphs; !reflect.DeepEqual(got, []string{"Loose text only"}) {
		t.Errorf("fallback paragraphs = %q", got)
	}
	if book.Chapters[0].Href != "OEBPS/text/one.xhtml" {
		t.Errorf("Href = %q", book.Chapters[0].Href)
	}
	if n := book.Chapters[0].Len(); n != len([]rune(book.Chapters[0].Text())) {
		t.Errorf("Len = %d, text has %d runes", n, len([]rune(book.Chapters[0].Text())))
	}
}

func TestOpenErrors(t *testing.T) {
	t.Run("not a zip", func(t *testing.T) {
		if _, err := Open([]byte("plain text")); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("no container", func(t *testing.T) {
		var buf bytes.Buffer
		w := zip.NewWriter(&buf)
		fw, _ := w.Create("mimetype")
		fw.Write([]byte("application/epub+zip"))
		w.Close()
		if _, err := Open(buf.Bytes()); !errors.Is(err, ErrNoContainer) {
			t.Errorf("err = %v, want ErrNoContainer", err)
		}
	})

	t.Run("empty spine", func(t *testing.T) {
		if _, err := Open(buildEPUB(t)); !errors.Is(err, ErrEmptySpine) {
			t.Errorf("err = %v, want ErrEmptySpine", err)
		}
	})
}

func TestTokens(t *testing.T) {
	loc := Location{Spine: 2, Offset: 100}
	if got := loc.Token(); got != "epubcfi(/6/6!/4/2:100)" {
		t.Errorf("Token = %q", got)
	}

	tests := []struct {
		token   string
		want    Location
		wantErr bool
	}{
		{"epubcfi(/6/6!/4/2:100)", Location{2, 100}, false},
		{"epubcfi(/6/2!/4/2:0)", Location{0, 0}, false},
		{"epubcfi(/6/4[chap01ref]!/4[body01]/10[para05]/3:10)", Location{1, 0}, false},
		{"epubcfi(/6/0!/4/2:0)", Location{}, true},
		{"12", Location{}, true},
		{"", Location{}, true},
	}
	for _, tt := range tests {
		got, err := ParseToken(tt.token)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseToken(%q) err = %v", tt.token, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseToken(%q) = %+v, want %+v", tt.token, got, tt.want)
		}
	}
}

func testBook() *Book {
	return &Book{Chapters: []Chapter{
		{Title: "long", Paragraphs: []string{longParagraph()}},
		{Title: "short", Paragraphs: []string{"ten chars!"}},
	}}
}

func TestLocations(t *testing.T) {
	locs := GenerateLocations(testBook(), ChunkSize, nil)

	want := []Location{{0, 0}, {0, 1024}, {0, 2048}, {1, 0}}
	if locs.Len() != len(want) {
		t.Fatalf("Len = %d, want %d", locs.Len(), len(want))
	}
	for i, w := range want {
		if locs.At(i) != w {
			t.Errorf("At(%d) = %+v, want %+v", i, locs.At(i), w)
		}
	}

	percentages := []struct {
		token string
		want  float64
	}{
		{Location{0, 0}.Token(), 0},
		{Location{0, 1500}.Token(), 1.0 / 3},
		{Location{0, 2048}.Token(), 2.0 / 3},
		{Location{1, 5}.Token(), 1},
		{"garbage", 0},
	}
	for _, tt := range percentages {
		if got := locs.PercentageFromToken(tt.token); got != tt.want {
			t.Errorf("PercentageFromToken(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}

	tokens := []struct {
		p    float64
		want Location
	}{
		{0, Location{0, 0}},
		{0.1, Location{0, 1024}},
		{0.5, Location{0, 2048}},
		{1, Location{1, 0}},
		{7, Location{1, 0}},
	}
	for _, tt := range tokens {
		if got := locs.TokenFromPercentage(tt.p); got != tt.want.Token() {
			t.Errorf("TokenFromPercentage(%v) = %q, want %q", tt.p, got, tt.want.Token())
		}
	}
}

func TestLocationsRoundTrip(t *testing.T) {
	locs := GenerateLocations(testBook(), 256, nil)
	for i := 0; i < locs.Len(); i++ {
		p := float64(i) / float64(locs.Len()-1)
		token := locs.TokenFromPercentage(p)
		if got := locs.PercentageFromToken(token); got != p {
			t.Errorf("index %d: %v -> %q -> %v", i, p, token, got)
		}
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		para  string
		width int
		want  []line
	}{
		{"words", "hello world foo", 11, []line{
			{"hello world", Location{0, 0}},
			{"foo", Location{0, 12}},
		}},
		{"hard break", "abcdefghij", 4, []line{
			{"abcd", Location{0, 0}},
			{"efgh", Location{0, 4}},
			{"ij", Location{0, 8}},
		}},
		{"wide runes", "日本語テキスト", 4, []line{
			{"日本", Location{0, 0}},
			{"語テ", Location{0, 2}},
			{"キス", Location{0, 4}},
			{"ト", Location{0, 6}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wrap(tt.para, 0, 0, tt.width); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("wrap = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestColumnWidth(t *testing.T) {
	tests := []struct{ cols, font, want int }{
		{80, 16, 80},
		{80, 32, 40},
		{80, 8, 80},
		{30, 48, 20},
		{10, 48, 10},
		{80, 0, 80},
	}
	for _, tt := range tests {
		if got := ColumnWidth(tt.cols, tt.font); got != tt.want {
			t.Errorf("ColumnWidth(%d, %d) = %d, want %d", tt.cols, tt.font, got, tt.want)
		}
	}
}

func TestPager(t *testing.T) {
	p := NewPager(testBook(), 30, 10, nil)

	for {
		for _, l := range p.Lines() {
			if w := runewidth.StringWidth(l); w > 30 {
				t.Fatalf("line %q is %d wide", l, w)
			}
		}
		if _, ok := p.Next(); !ok {
			break
		}
	}
	last := p.Screen()
	if last != p.Screens()-1 {
		t.Fatalf("stopped on screen %d of %d", last, p.Screens())
	}
	// The short chapter starts its own screen
	if loc := p.CurrentLocation(); loc != (Location{1, 0}) {
		t.Errorf("last screen starts at %+v", loc)
	}

	if _, ok := p.Prev(); !ok {
		t.Fatal("Prev failed")
	}
	for p.Screen() > 0 {
		p.Prev()
	}
	if _, ok := p.Prev(); ok {
		t.Error("Prev on the first screen must fail")
	}

	got := p.Display(Location{0, 1500}.Token())
	loc, err := ParseToken(got)
	if err != nil {
		t.Fatalf("Display returned %q: %v", got, err)
	}
	if loc.Spine != 0 || loc.Offset > 1500 {
		t.Errorf("Display landed on %+v", loc)
	}
	if p.Display("nonsense") != (Location{}).Token() {
		t.Error("unparseable tokens show the beginning")
	}
}

func TestPagerResizeKeepsLocation(t *testing.T) {
	p := NewPager(testBook(), 40, 5, nil)
	p.Display(Location{0, 2000}.Token())
	before := p.CurrentLocation()

	p.Resize(20, 8)
	after := p.CurrentLocation()
	if after.Spine != 0 || after.Offset > before.Offset || before.Offset-after.Offset > 20*8+20 {
		t.Errorf("resize moved from %+v to %+v", before, after)
	}
}

func TestPagerDrivesReflowable(t *testing.T) {
	book := testBook()
	r := viewer.NewReflowable("/a.epub", viewer.DefaultOptions(), report.Nop{})
	pager := NewPager(book, 30, 10, nil)
	r.Attach(pager)

	r.CommitSlider(1)
	if pager.Screen() != 0 {
		t.Error("slider must not move the book before indexing")
	}

	r.LocationsGenerated(GenerateLocations(book, ChunkSize, nil))
	r.CommitSlider(1)
	if pager.CurrentLocation() != (Location{1, 0}) {
		t.Errorf("slider end shows %+v", pager.CurrentLocation())
	}
	if r.Percentage() != 1 {
		t.Errorf("Percentage = %v", r.Percentage())
	}
}
