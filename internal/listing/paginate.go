package listing

import (
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// Page sizes of the list endpoints
const (
	CookPageSize       = 10
	DishPageSize       = 6
	DishTypePageSize   = 10
	IngredientPageSize = 10
)

// LastPage is the page parameter value selecting the final page
const LastPage = "last"

// ErrPageNotFound is returned for a page parameter that is not a number
// or lies outside the available pages
var ErrPageNotFound = errors.New("invalid page")

// Page describes one page of a list. The first page of an empty list exists.
type Page struct {
	Number      int   `json:"number"`
	Size        int   `json:"size"`
	Count       int64 `json:"count"`
	NumPages    int   `json:"num_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// ResolvePage validates the raw page parameter against the total item count
func ResolvePage(raw string, count int64, size int) (Page, error) {
	if size < 1 {
		size = 1
	}
	numPages := int((count + int64(size) - 1) / int64(size))
	if numPages < 1 {
		numPages = 1
	}

	number := 1
	switch raw = strings.TrimSpace(raw); raw {
	case "":
	case LastPage:
		number = numPages
	default:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Page{}, ErrPageNotFound
		}
		number = n
	}
	if number < 1 || number > numPages {
		return Page{}, ErrPageNotFound
	}

	return Page{
		Number:      number,
		Size:        size,
		Count:       count,
		NumPages:    numPages,
		HasNext:     number < numPages,
		HasPrevious: number > 1,
	}, nil
}

// Offset is the index of the first item on the page
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Scope limits a query to the page
func (p Page) Scope(db *gorm.DB) *gorm.DB {
	return db.Offset(p.Offset()).Limit(p.Size)
}
