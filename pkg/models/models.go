package models

// BookType identifies the kind of library entry
type BookType string

// Book type constants as reported by the server
const (
	BookTypeEPUB   BookType = "EPUB"
	BookTypePDF    BookType = "PDF"
	BookTypeCBZ    BookType = "CBZ"
	BookTypeCBR    BookType = "CBR"
	BookTypeFolder BookType = "Folder"
)

// IsPaginated returns true for formats rendered page by page as images
func (t BookType) IsPaginated() bool {
	switch t {
	case BookTypePDF, BookTypeCBZ, BookTypeCBR:
		return true
	}
	return false
}

// Format returns the lowercase stream name used in /book/<format> URLs
func (t BookType) Format() string {
	switch t {
	case BookTypePDF:
		return "pdf"
	case BookTypeCBZ:
		return "cbz"
	case BookTypeCBR:
		return "cbr"
	case BookTypeEPUB:
		return "epub"
	default:
		return ""
	}
}

// BookEntry represents a book or folder in a listing
type BookEntry struct {
	Type            BookType `json:"type"`
	Path            string   `json:"path"`
	Cover           string   `json:"cover"`
	Title           string   `json:"title"`
	CurrentPosition string   `json:"currentPosition"` // CFI or page number
	Progress        float64  `json:"progress"`        // 0..1
}

// IsFolder returns true if the entry is a folder
func (b *BookEntry) IsFolder() bool {
	return b.Type == BookTypeFolder
}

// SortKey selects the listing order
type SortKey string

const (
	SortTitle      SortKey = "title"
	SortAddedTime  SortKey = "added_time"
	SortLastOpened SortKey = "last_opened"
	SortProgress   SortKey = "progress"
)

// SortKeys lists the keys in the order the library view cycles through them
var SortKeys = []SortKey{SortTitle, SortAddedTime, SortLastOpened, SortProgress}

// Label returns a display name for the sort key
func (k SortKey) Label() string {
	switch k {
	case SortAddedTime:
		return "Date Added"
	case SortLastOpened:
		return "Last Opened"
	case SortProgress:
		return "Progress"
	default:
		return "Title"
	}
}

// SortOrder is either ascending or descending
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// BooksResponse represents the API response for a listing page
type BooksResponse struct {
	Books   []BookEntry `json:"books"`
	HasMore bool        `json:"hasMore"`
}

// PagesResponse represents the page count response for paginated formats
type PagesResponse struct {
	Pages int `json:"pages"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error string `json:"error"`
}
