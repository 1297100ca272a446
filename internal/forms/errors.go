package forms

import (
	"sort"
	"strings"
)

// NonFieldErrors is the key for errors that belong to the form as a whole
const NonFieldErrors = "__all__"

// FieldErrors maps a form field to its validation messages
type FieldErrors map[string][]string

// Add appends a message to the field
func (e FieldErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Has reports whether the field has at least one error
func (e FieldErrors) Has(field string) bool {
	return len(e[field]) > 0
}

// Any reports whether the form has errors at all
func (e FieldErrors) Any() bool {
	return len(e) > 0
}

// Merge copies every message of other into e
func (e FieldErrors) Merge(other FieldErrors) {
	for field, messages := range other {
		for _, message := range messages {
			e.Add(field, message)
		}
	}
}

// Fields returns the fields with errors in sorted order
func (e FieldErrors) Fields() []string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, field := range e.Fields() {
		parts = append(parts, field+": "+strings.Join(e[field], " "))
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// Err returns e as an error, or nil when there are no errors
func (e FieldErrors) Err() error {
	if !e.Any() {
		return nil
	}
	return e
}
