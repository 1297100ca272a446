package forms

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/franciscosanchezn/gin-kitchen/internal/models"
	"github.com/pmezard/go-difflib/difflib"
)

const (
	MinPasswordLength = 8

	// maxSimilarity is the ratio above which a password counts as too
	// similar to one of the cook's attributes
	maxSimilarity = 0.7

	msgPasswordMismatch = "The two password fields didn't match."
)

var commonPasswords = map[string]bool{
	"123456": true, "123456789": true, "12345678": true, "1234567890": true,
	"password": true, "password1": true, "password123": true, "passw0rd": true,
	"qwerty": true, "qwerty123": true, "qwertyuiop": true, "1q2w3e4r": true,
	"abc123": true, "iloveyou": true, "admin": true, "admin123": true,
	"welcome": true, "welcome1": true, "letmein": true, "monkey": true,
	"dragon": true, "football": true, "baseball": true, "sunshine": true,
	"princess": true, "superman": true, "trustno1": true, "whatever": true,
	"starwars": true, "master": true, "shadow": true, "michael": true,
	"11111111": true, "00000000": true, "87654321": true, "asdfghjk": true,
	"zaq12wsx": true, "changeme": true, "computer": true, "internet": true,
}

var attributeSplit = regexp.MustCompile(`\W+`)

// passwordAttribute is a cook attribute the password must not resemble
type passwordAttribute struct {
	label string
	value string
}

// ValidatePassword applies the password strength policy and returns one
// message per violated rule
func ValidatePassword(password string, cook models.Cook) []string {
	var problems []string

	attributes := []passwordAttribute{
		{"username", cook.Username},
		{"first name", cook.FirstName},
		{"last name", cook.LastName},
		{"email address", cook.Email},
	}
	for _, attr := range attributes {
		if tooSimilar(password, attr.value) {
			problems = append(problems, fmt.Sprintf("The password is too similar to the %s.", attr.label))
			break
		}
	}

	if len([]rune(password)) < MinPasswordLength {
		problems = append(problems, fmt.Sprintf(
			"This password is too short. It must contain at least %d characters.", MinPasswordLength))
	}
	if commonPasswords[strings.ToLower(strings.TrimSpace(password))] {
		problems = append(problems, "This password is too common.")
	}
	if isNumeric(password) {
		problems = append(problems, "This password is entirely numeric.")
	}
	return problems
}

// checkPasswordPair validates a new password and its confirmation,
// attaching errors to the confirmation field
func checkPasswordPair(errs FieldErrors, field1, password1, field2, password2 string, cook models.Cook) {
	if errs.Has(field1) || errs.Has(field2) {
		return
	}
	if password1 != password2 {
		errs.Add(field2, msgPasswordMismatch)
		return
	}
	for _, problem := range ValidatePassword(password2, cook) {
		errs.Add(field2, problem)
	}
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func tooSimilar(password, attribute string) bool {
	if attribute == "" {
		return false
	}
	password = strings.ToLower(password)
	parts := append(attributeSplit.Split(strings.ToLower(attribute), -1), strings.ToLower(attribute))
	for _, part := range parts {
		if part == "" {
			continue
		}
		if similarity(password, part) >= maxSimilarity {
			return true
		}
	}
	return false
}

// similarity is the difflib ratio of the two strings compared rune by rune
func similarity(a, b string) float64 {
	return difflib.NewMatcher(splitRunes(a), splitRunes(b)).Ratio()
}

func splitRunes(s string) []string {
	runes := make([]string, 0, len(s))
	for _, r := range s {
		runes = append(runes, string(r))
	}
	return runes
}

// PasswordChangeForm changes the password of the signed-in cook
type PasswordChangeForm struct {
	OldPassword  string `form:"old_password" json:"old_password" validate:"required"`
	NewPassword1 string `form:"new_password1" json:"new_password1" validate:"required"`
	NewPassword2 string `form:"new_password2" json:"new_password2" validate:"required"`
}

var PasswordChangeFields = []string{"old_password", "new_password1", "new_password2"}

// Validate checks the old password against the stored hash and the new pair against the policy
func (f *PasswordChangeForm) Validate(cook models.Cook) FieldErrors {
	errs := validateStruct(f)
	if !errs.Has("old_password") && !cook.CheckPassword(f.OldPassword) {
		errs.Add("old_password", "Your old password was entered incorrectly. Please enter it again.")
	}
	checkPasswordPair(errs, "new_password1", f.NewPassword1, "new_password2", f.NewPassword2, cook)
	return errs
}

// SetPasswordForm sets a new password without knowing the old one.
// Superusers use it on other cooks.
type SetPasswordForm struct {
	NewPassword1 string `form:"new_password1" json:"new_password1" validate:"required"`
	NewPassword2 string `form:"new_password2" json:"new_password2" validate:"required"`
}

var SetPasswordFields = []string{"new_password1", "new_password2"}

func (f *SetPasswordForm) Validate(cook models.Cook) FieldErrors {
	errs := validateStruct(f)
	checkPasswordPair(errs, "new_password1", f.NewPassword1, "new_password2", f.NewPassword2, cook)
	return errs
}
