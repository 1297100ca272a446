package models

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Cook is a kitchen staff member and the account used to sign in
type Cook struct {
	ID                uint       `json:"id" gorm:"primaryKey"`
	Username          string     `json:"username" gorm:"size:150;uniqueIndex;not null"`
	Password          string     `json:"-" gorm:"size:128;not null"`
	FirstName         string     `json:"first_name" gorm:"size:150"`
	LastName          string     `json:"last_name" gorm:"size:150"`
	Email             string     `json:"email" gorm:"size:254"`
	YearsOfExperience uint       `json:"years_of_experience" gorm:"not null;default:0"`
	IsStaff           bool       `json:"is_staff" gorm:"not null"`
	IsSuperuser       bool       `json:"is_superuser" gorm:"not null"`
	IsActive          bool       `json:"is_active" gorm:"not null"`
	LastLogin         *time.Time `json:"last_login,omitempty"`
	DateJoined        time.Time  `json:"date_joined" gorm:"autoCreateTime"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// String renders the cook the way lists and selects display it
func (c Cook) String() string {
	return fmt.Sprintf("%s: %s %s", c.Username, c.FirstName, c.LastName)
}

// FullName joins first and last name
func (c Cook) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// AbsoluteURL is the detail route of the cook
func (c Cook) AbsoluteURL() string {
	return fmt.Sprintf("/cooks/%d/", c.ID)
}

// IsPrivileged reports whether the cook is staff or superuser
func (c Cook) IsPrivileged() bool {
	return c.IsStaff || c.IsSuperuser
}

// SetPassword stores the bcrypt hash of the raw password
func (c *Cook) SetPassword(raw string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	c.Password = string(hash)
	return nil
}

// CheckPassword compares a raw password against the stored hash
func (c *Cook) CheckPassword(raw string) bool {
	if c.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(c.Password), []byte(raw)) == nil
}
