package library

import (
	"context"
	"fmt"

	"github.com/justyntemme/tome-t/pkg/models"
)

// Shelf is a fixed first-page listing shown on the home screen
type Shelf struct {
	Title string
	Query Query
}

// HomeShelves are the home screen rows: recently read, then recently added
var HomeShelves = []Shelf{
	{Title: "Reading", Query: AllQuery().WithSort(models.SortLastOpened, models.OrderDesc)},
	{Title: "Arrivals", Query: AllQuery().WithSort(models.SortAddedTime, models.OrderDesc)},
}

// LoadShelf fetches the first page of a shelf
func LoadShelf(ctx context.Context, lister Lister, shelf Shelf) ([]models.BookEntry, error) {
	resp, err := Fetch(ctx, lister, shelf.Query, 1)
	if err != nil {
		return nil, fmt.Errorf("load shelf %s: %w", shelf.Title, err)
	}
	return resp.Books, nil
}
