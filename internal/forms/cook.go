package forms

import (
	"encoding/json"
	"strings"

	"github.com/franciscosanchezn/gin-kitchen/internal/models"
	"github.com/franciscosanchezn/gin-kitchen/internal/permissions"
)

var cookCreationFields = []string{
	"username",
	"password1",
	"password2",
	"first_name",
	"last_name",
	"email",
	"years_of_experience",
	"is_staff",
	"is_active",
}

var cookUpdateFields = []string{
	"username",
	"first_name",
	"last_name",
	"email",
	"years_of_experience",
	"is_active",
	"is_staff",
}

// CookCreationFields lists the creation form fields the actor may submit
func CookCreationFields(actor *models.Cook) []string {
	return restrictFields(cookCreationFields, actor)
}

// CookUpdateFields lists the update form fields the actor may submit
func CookUpdateFields(actor *models.Cook) []string {
	return restrictFields(cookUpdateFields, actor)
}

// CookCreationForm registers a new cook
type CookCreationForm struct {
	Username          string      `form:"username" json:"username" validate:"required,max=150,username"`
	Password1         string      `form:"password1" json:"password1" validate:"required"`
	Password2         string      `form:"password2" json:"password2" validate:"required"`
	FirstName         string      `form:"first_name" json:"first_name" validate:"required,max=150"`
	LastName          string      `form:"last_name" json:"last_name" validate:"required,max=150"`
	Email             string      `form:"email" json:"email" validate:"omitempty,max=254,email"`
	YearsOfExperience json.Number `form:"years_of_experience" json:"years_of_experience" validate:"required"`
	IsStaff           *bool       `form:"is_staff" json:"is_staff"`
	IsActive          *bool       `form:"is_active" json:"is_active"`

	years uint
}

// Restrict discards the privilege fields when the actor may not set them
func (f *CookCreationForm) Restrict(actor *models.Cook) {
	if !permissions.CanEditPrivileges(actor) {
		f.IsStaff = nil
		f.IsActive = nil
	}
}

// Validate cleans the submitted values and returns the field errors
func (f *CookCreationForm) Validate() FieldErrors {
	f.Username = strings.TrimSpace(f.Username)
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.TrimSpace(f.Email)

	errs := validateStruct(f)
	if !errs.Has("years_of_experience") {
		f.years, _ = parseWholeNumber(errs, "years_of_experience", f.YearsOfExperience.String())
	}

	candidate := models.Cook{Username: f.Username, FirstName: f.FirstName, LastName: f.LastName, Email: f.Email}
	checkPasswordPair(errs, "password1", f.Password1, "password2", f.Password2, candidate)
	return errs
}

// Cook builds the record to insert. New cooks are active unless the form says otherwise.
func (f *CookCreationForm) Cook() (models.Cook, error) {
	cook := models.Cook{
		Username:          f.Username,
		FirstName:         f.FirstName,
		LastName:          f.LastName,
		Email:             f.Email,
		YearsOfExperience: f.years,
		IsActive:          true,
	}
	if f.IsStaff != nil {
		cook.IsStaff = *f.IsStaff
	}
	if f.IsActive != nil {
		cook.IsActive = *f.IsActive
	}
	if err := cook.SetPassword(f.Password1); err != nil {
		return models.Cook{}, err
	}
	return cook, nil
}

// CookUpdateForm edits the profile of an existing cook
type CookUpdateForm struct {
	Username          string      `form:"username" json:"username" validate:"required,max=150,username"`
	FirstName         string      `form:"first_name" json:"first_name" validate:"max=150"`
	LastName          string      `form:"last_name" json:"last_name" validate:"max=150"`
	Email             string      `form:"email" json:"email" validate:"omitempty,max=254,email"`
	YearsOfExperience json.Number `form:"years_of_experience" json:"years_of_experience" validate:"required"`
	IsActive          *bool       `form:"is_active" json:"is_active"`
	IsStaff           *bool       `form:"is_staff" json:"is_staff"`

	years uint
}

// Restrict discards the privilege fields when the actor may not set them
func (f *CookUpdateForm) Restrict(actor *models.Cook) {
	if !permissions.CanEditPrivileges(actor) {
		f.IsStaff = nil
		f.IsActive = nil
	}
}

func (f *CookUpdateForm) Validate() FieldErrors {
	f.Username = strings.TrimSpace(f.Username)
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.TrimSpace(f.Email)

	errs := validateStruct(f)
	if !errs.Has("years_of_experience") {
		f.years, _ = parseWholeNumber(errs, "years_of_experience", f.YearsOfExperience.String())
	}
	return errs
}

// Apply copies the cleaned values onto the stored cook. Privilege flags
// that were not submitted keep their stored value.
func (f *CookUpdateForm) Apply(cook *models.Cook) {
	cook.Username = f.Username
	cook.FirstName = f.FirstName
	cook.LastName = f.LastName
	cook.Email = f.Email
	cook.YearsOfExperience = f.years
	if f.IsStaff != nil {
		cook.IsStaff = *f.IsStaff
	}
	if f.IsActive != nil {
		cook.IsActive = *f.IsActive
	}
}

// CookInitial is the update form prefilled from a stored cook, limited to
// the fields the actor may see
func CookInitial(cook models.Cook, actor *models.Cook) map[string]interface{} {
	values := map[string]interface{}{
		"username":            cook.Username,
		"first_name":          cook.FirstName,
		"last_name":           cook.LastName,
		"email":               cook.Email,
		"years_of_experience": cook.YearsOfExperience,
		"is_active":           cook.IsActive,
		"is_staff":            cook.IsStaff,
	}
	initial := make(map[string]interface{}, len(values))
	for _, field := range CookUpdateFields(actor) {
		initial[field] = values[field]
	}
	return initial
}
