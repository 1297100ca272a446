package forms

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/franciscosanchezn/gin-kitchen/internal/models"
	"github.com/franciscosanchezn/gin-kitchen/internal/permissions"
	"github.com/go-playground/validator/v10"
)

const (
	msgRequired     = "This field is required."
	msgWholeNumber  = "Enter a whole number."
	msgInvalidEmail = "Enter a valid email address."
	msgUsername     = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

var validate = newValidator()

// newValidator reports errors under the form field name instead of the Go field name
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return v
}

// validateStruct runs the struct tags and converts failures to field errors.
// Only the first failing rule of each field is reported.
func validateStruct(form interface{}) FieldErrors {
	errs := FieldErrors{}

	var validationErrs validator.ValidationErrors
	if err := validate.Struct(form); errors.As(err, &validationErrs) {
		for _, fe := range validationErrs {
			errs.Add(fe.Field(), message(fe))
		}
	}
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "max":
		length := utf8.RuneCountInString(fmt.Sprint(fe.Value()))
		return fmt.Sprintf("Ensure this value has at most %s characters (it has %d).", fe.Param(), length)
	case "email":
		return msgInvalidEmail
	case "username":
		return msgUsername
	default:
		return "Enter a valid value."
	}
}

// parseWholeNumber parses a non-negative integer field
func parseWholeNumber(errs FieldErrors, field, raw string) (uint, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		errs.Add(field, msgWholeNumber)
		return 0, false
	}
	if n < 0 {
		errs.Add(field, "Ensure this value is greater than or equal to 0.")
		return 0, false
	}
	return uint(n), true
}

// restrictFields drops the privilege fields for actors who are neither staff nor superuser
func restrictFields(fields []string, actor *models.Cook) []string {
	if permissions.CanEditPrivileges(actor) {
		return append([]string(nil), fields...)
	}
	restricted := make([]string, 0, len(fields))
	for _, field := range fields {
		if field == "is_staff" || field == "is_active" {
			continue
		}
		restricted = append(restricted, field)
	}
	return restricted
}
