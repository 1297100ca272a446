package listing

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Params are the raw list query parameters
type Params struct {
	Search  string
	OrderBy string
	Page    string
}

// Query describes how one entity is listed
type Query struct {
	Ordering Ordering
	PageSize int
	// SearchColumns are matched against the search term
	SearchColumns []clause.Column
}

// Result is one page of a list along with the parameters that produced it
type Result[T any] struct {
	Items   []T    `json:"items"`
	Page    Page   `json:"page"`
	Search  string `json:"search"`
	OrderBy string `json:"current_order"`
}

// Find runs a filtered, ordered and paginated query. prepare adds joins or
// preloads to the select and is not applied to the count.
func Find[T any](db *gorm.DB, q Query, params Params, prepare func(*gorm.DB) *gorm.DB) (Result[T], error) {
	search := strings.TrimSpace(params.Search)
	base := Contains(search, q.SearchColumns...)(db.Model(new(T))).Session(&gorm.Session{})

	var count int64
	if err := base.Count(&count).Error; err != nil {
		return Result[T]{}, err
	}

	page, err := ResolvePage(params.Page, count, q.PageSize)
	if err != nil {
		return Result[T]{}, err
	}

	keys, columns := q.Ordering.Resolve(params.OrderBy)
	query := base
	if prepare != nil {
		query = prepare(query)
	}

	items := make([]T, 0, q.PageSize)
	if err := page.Scope(query.Order(clause.OrderBy{Columns: columns})).Find(&items).Error; err != nil {
		return Result[T]{}, err
	}

	return Result[T]{
		Items:   items,
		Page:    page,
		Search:  search,
		OrderBy: strings.Join(keys, ","),
	}, nil
}
