package forms

import "strings"

// NameFields lists the fields of the dish type and ingredient forms
var NameFields = []string{"name"}

// NameForm creates or renames a dish type or an ingredient
type NameForm struct {
	Name string `form:"name" json:"name" validate:"required,max=63"`
}

func (f *NameForm) Validate() FieldErrors {
	f.Name = strings.TrimSpace(f.Name)
	return validateStruct(f)
}
