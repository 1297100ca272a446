package models

import (
	"time"
)

// Session is a server-side login session referenced by the session cookie
type Session struct {
	ID        uint      `gorm:"primaryKey"`
	Key       string    `gorm:"column:session_key;size:64;uniqueIndex;not null"`
	CookID    uint      `gorm:"not null;index"`
	UserAgent string    `gorm:"size:255"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}

func (Session) TableName() string {
	return "sessions"
}

// Expired reports whether the session is past its expiry at the given time
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
