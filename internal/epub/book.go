// Package epub turns an EPUB archive into wrapped, screen-sized pages of
// text and maps reading positions to book percentages.
package epub

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	ErrNoContainer = errors.New("META-INF/container.xml not found")
	ErrNoRootfile  = errors.New("no rootfile in container.xml")
	ErrEmptySpine  = errors.New("spine has no readable documents")
)

// blockSelector lists the elements whose text becomes its own paragraph
const blockSelector = "p, h1, h2, h3, h4, h5, h6, li, blockquote, pre, dt, dd, figcaption"

// Chapter is one spine document reduced to plain text paragraphs
type Chapter struct {
	Href       string
	Title      string
	Paragraphs []string
}

// Text returns the chapter text with paragraphs separated by blank lines.
// Location offsets count runes in this text.
func (c Chapter) Text() string {
	return strings.Join(c.Paragraphs, "\n\n")
}

// Len returns the rune length of Text
func (c Chapter) Len() int {
	n := 0
	for i, p := range c.Paragraphs {
		if i > 0 {
			n += 2
		}
		n += len([]rune(p))
	}
	return n
}

// Book is the readable content of an EPUB in spine order
type Book struct {
	Title    string
	Chapters []Chapter
}

type container struct {
	Rootfiles struct {
		Rootfile []struct {
			FullPath  string `xml:"full-path,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"rootfile"`
	} `xml:"rootfiles"`
}

type opfPackage struct {
	Metadata struct {
		Title []string `xml:"http://purl.org/dc/elements/1.1/ title"`
	} `xml:"metadata"`
	Manifest struct {
		Items []struct {
			ID        string `xml:"id,attr"`
			Href      string `xml:"href,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		ItemRefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

// Open parses an EPUB held in memory
func Open(data []byte) (*Book, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open epub: %w", err)
	}

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[strings.TrimPrefix(f.Name, "/")] = f
	}

	opfPath, err := rootfile(files)
	if err != nil {
		return nil, err
	}
	raw, err := readFile(files, opfPath)
	if err != nil {
		return nil, fmt.Errorf("read opf: %w", err)
	}
	var pkg opfPackage
	if err := xml.Unmarshal(raw, &pkg); err != nil {
		return nil, fmt.Errorf("parse opf: %w", err)
	}

	hrefs := make(map[string]string, len(pkg.Manifest.Items))
	types := make(map[string]string, len(pkg.Manifest.Items))
	for _, item := range pkg.Manifest.Items {
		hrefs[item.ID] = item.Href
		types[item.ID] = item.MediaType
	}

	book := &Book{}
	if len(pkg.Metadata.Title) > 0 {
		book.Title = strings.TrimSpace(pkg.Metadata.Title[0])
	}

	opfDir := path.Dir(opfPath)
	for _, ref := range pkg.Spine.ItemRefs {
		href, ok := hrefs[ref.IDRef]
		if !ok || !isDocument(types[ref.IDRef]) {
			continue
		}
		full := resolveHref(opfDir, href)
		content, err := readFile(files, full)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", full, err)
		}
		ch, err := parseChapter(full, content)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", full, err)
		}
		book.Chapters = append(book.Chapters, ch)
	}
	if len(book.Chapters) == 0 {
		return nil, ErrEmptySpine
	}
	return book, nil
}

func rootfile(files map[string]*zip.File) (string, error) {
	raw, err := readFile(files, "META-INF/container.xml")
	if err != nil {
		return "", ErrNoContainer
	}
	var c container
	if err := xml.Unmarshal(raw, &c); err != nil {
		return "", fmt.Errorf("parse container.xml: %w", err)
	}
	for _, rf := range c.Rootfiles.Rootfile {
		if rf.MediaType == "application/oebps-package+xml" || rf.MediaType == "" {
			return strings.TrimPrefix(rf.FullPath, "/"), nil
		}
	}
	if len(c.Rootfiles.Rootfile) > 0 {
		return strings.TrimPrefix(c.Rootfiles.Rootfile[0].FullPath, "/"), nil
	}
	return "", ErrNoRootfile
}

func readFile(files map[string]*zip.File, name string) ([]byte, error) {
	f, ok := files[name]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func resolveHref(dir, href string) string {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		href = href[:i]
	}
	if unescaped, err := url.PathUnescape(href); err == nil {
		href = unescaped
	}
	if dir == "." {
		return path.Clean(href)
	}
	return path.Join(dir, href)
}

func isDocument(mediaType string) bool {
	switch mediaType {
	case "application/xhtml+xml", "text/html", "":
		return true
	}
	return false
}

func parseChapter(href string, content []byte) (Chapter, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return Chapter{}, err
	}

	ch := Chapter{
		Href:  href,
		Title: collapse(doc.Find("title").First().Text()),
	}
	body := doc.Find("body")
	body.Find("script, style").Remove()

	body.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		// Nested blocks are covered by their outermost ancestor
		if s.ParentsFiltered(blockSelector).Length() > 0 {
			return
		}
		if text := collapse(s.Text()); text != "" {
			ch.Paragraphs = append(ch.Paragraphs, text)
		}
	})
	if len(ch.Paragraphs) == 0 {
		if text := collapse(body.Text()); text != "" {
			ch.Paragraphs = append(ch.Paragraphs, text)
		}
	}
	if ch.Title == "" {
		ch.Title = collapse(body.Find("h1, h2").First().Text())
	}
	return ch, nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
