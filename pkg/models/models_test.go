package models

import (
	"encoding/json"
	"testing"
)

func TestBookTypeFormat(t *testing.T) {
	tests := []struct {
		typ       BookType
		format    string
		paginated bool
	}{
		{BookTypePDF, "pdf", true},
		{BookTypeCBZ, "cbz", true},
		{BookTypeCBR, "cbr", true},
		{BookTypeEPUB, "epub", false},
		{BookTypeFolder, "", false},
		{BookType("MOBI"), "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			if got := tt.typ.Format(); got != tt.format {
				t.Errorf("Format() = %q, want %q", got, tt.format)
			}
			if got := tt.typ.IsPaginated(); got != tt.paginated {
				t.Errorf("IsPaginated() = %v, want %v", got, tt.paginated)
			}
		})
	}
}

func TestBooksResponseDecode(t *testing.T) {
	body := `{"books":[{"type":"CBZ","path":"/a/b.cbz","cover":"/a/b.jpg","title":"B","currentPosition":"7","progress":0.25}],"hasMore":true}`

	var resp BooksResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !resp.HasMore {
		t.Error("Expected hasMore to be true")
	}
	if len(resp.Books) != 1 {
		t.Fatalf("Expected 1 book, got %d", len(resp.Books))
	}
	b := resp.Books[0]
	if b.Type != BookTypeCBZ || b.CurrentPosition != "7" || b.Progress != 0.25 {
		t.Errorf("Unexpected entry: %+v", b)
	}
}
