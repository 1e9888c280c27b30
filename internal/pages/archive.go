package pages

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/maruel/natural"
	"github.com/nwaples/rardecode"
)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

type archiveKind int

const (
	kindZip archiveKind = iota
	kindRar
	kind7z
)

func archiveKindOf(path string) (archiveKind, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cbz", ".zip":
		return kindZip, true
	case ".cbr", ".rar":
		return kindRar, true
	case ".cb7", ".7z":
		return kind7z, true
	}
	return 0, false
}

// IsArchive reports whether path has a comic archive extension
func IsArchive(path string) bool {
	_, ok := archiveKindOf(path)
	return ok
}

func isImageEntry(name string) bool {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}

// ArchiveSource reads pages from a local CBZ/CBR/CB7 file. Image entries
// are ordered naturally, so "page10" follows "page9".
type ArchiveSource struct {
	path    string
	kind    archiveKind
	entries []string
}

// OpenArchive lists the image entries of the archive at path
func OpenArchive(path string) (*ArchiveSource, error) {
	kind, ok := archiveKindOf(path)
	if !ok {
		return nil, fmt.Errorf("unsupported archive format: %s", filepath.Ext(path))
	}

	var entries []string
	var err error
	switch kind {
	case kindZip:
		entries, err = listZip(path)
	case kindRar:
		entries, err = listRar(path)
	case kind7z:
		entries, err = list7z(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read archive %s: %w", path, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoPages)
	}

	slices.SortFunc(entries, func(a, b string) int {
		switch {
		case natural.Less(a, b):
			return -1
		case natural.Less(b, a):
			return 1
		}
		return 0
	})
	return &ArchiveSource{path: path, kind: kind, entries: entries}, nil
}

func (s *ArchiveSource) PageCount(context.Context) (int, error) {
	return len(s.entries), nil
}

func (s *ArchiveSource) Page(ctx context.Context, page int) ([]byte, error) {
	if page < 1 || page > len(s.entries) {
		return nil, fmt.Errorf("page %d out of range 1..%d", page, len(s.entries))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entry := s.entries[page-1]
	switch s.kind {
	case kindRar:
		return readRar(s.path, entry)
	case kind7z:
		return read7z(s.path, entry)
	default:
		return readZip(s.path, entry)
	}
}

func listZip(path string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var names []string
	for _, f := range r.File {
		if !f.FileInfo().IsDir() && isImageEntry(f.Name) {
			names = append(names, f.Name)
		}
	}
	return names, nil
}

func readZip(path, entry string) ([]byte, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != entry {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("entry %s not found in %s", entry, path)
}

func listRar(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := rardecode.NewReader(f, "")
	if err != nil {
		return nil, err
	}

	var names []string
	for {
		header, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if !header.IsDir && isImageEntry(header.Name) {
			names = append(names, header.Name)
		}
	}
	return names, nil
}

// readRar scans the archive up to entry; rar has no random access
func readRar(path, entry string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := rardecode.NewReader(f, "")
	if err != nil {
		return nil, err
	}
	for {
		header, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if header.Name == entry {
			return io.ReadAll(r)
		}
	}
	return nil, fmt.Errorf("entry %s not found in %s", entry, path)
}

func list7z(path string) ([]string, error) {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var names []string
	for _, f := range r.File {
		if !f.FileInfo().IsDir() && isImageEntry(f.Name) {
			names = append(names, f.Name)
		}
	}
	return names, nil
}

func read7z(path, entry string) ([]byte, error) {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != entry {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("entry %s not found in %s", entry, path)
}
