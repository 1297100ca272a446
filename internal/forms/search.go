package forms

import "strings"

// SearchForm carries the search term of a list page. An empty term is valid
// and disables filtering.
type SearchForm struct {
	Title string `form:"title" json:"title" validate:"max=255"`
}

// NewSearchForm reads the term from the first non-empty query parameter,
// e.g. "username" on the cook list, falling back to "title"
func NewSearchForm(query func(string) string, params ...string) SearchForm {
	for _, param := range append(params, "title") {
		if term := strings.TrimSpace(query(param)); term != "" {
			return SearchForm{Title: term}
		}
	}
	return SearchForm{}
}

func (f *SearchForm) Validate() FieldErrors {
	f.Title = strings.TrimSpace(f.Title)
	return validateStruct(f)
}

// Term is the cleaned search term, empty when the form is invalid
func (f SearchForm) Term() string {
	if validateStruct(&f).Any() {
		return ""
	}
	return strings.TrimSpace(f.Title)
}
