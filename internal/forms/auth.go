package forms

import "strings"

// MsgInvalidLogin is reported when the credentials do not match an active cook
const MsgInvalidLogin = "Please enter a correct username and password. Note that both fields may be case-sensitive."

// LoginFields lists the login form fields
var LoginFields = []string{"username", "password"}

// LoginForm authenticates a cook
type LoginForm struct {
	Username string `form:"username" json:"username" validate:"required,max=150"`
	Password string `form:"password" json:"password" validate:"required"`
}

func (f *LoginForm) Validate() FieldErrors {
	f.Username = strings.TrimSpace(f.Username)
	return validateStruct(f)
}
