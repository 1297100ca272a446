package auth

import (
	"context"
	"errors"
	"time"

	"github.com/franciscosanchezn/gin-kitchen/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSessionStore keeps login sessions in the sessions table
type GormSessionStore struct {
	db *gorm.DB
}

func NewGormSessionStore(db *gorm.DB) *GormSessionStore {
	return &GormSessionStore{db: db}
}

// Create starts a session for the cook lasting ttl
func (s *GormSessionStore) Create(ctx context.Context, cookID uint, userAgent string, ttl time.Duration) (models.Session, error) {
	if len(userAgent) > 255 {
		userAgent = userAgent[:255]
	}
	session := models.Session{
		Key:       uuid.NewString(),
		CookID:    cookID,
		UserAgent: userAgent,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return models.Session{}, err
	}
	return session, nil
}

// Get returns the live session with key. An expired session is removed.
func (s *GormSessionStore) Get(ctx context.Context, key string) (models.Session, error) {
	var session models.Session
	if err := s.db.WithContext(ctx).Where("session_key = ?", key).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Session{}, ErrSessionNotFound
		}
		return models.Session{}, err
	}
	if session.Expired(time.Now()) {
		if err := s.Remove(ctx, key); err != nil {
			log.WithError(err).Warn("Failed to remove expired session")
		}
		return models.Session{}, ErrSessionExpired
	}
	return session, nil
}

// Remove deletes the session with key
func (s *GormSessionStore) Remove(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("session_key = ?", key).Delete(&models.Session{}).Error
}

// RemoveOthers deletes every session of the cook except keepKey
func (s *GormSessionStore) RemoveOthers(ctx context.Context, cookID uint, keepKey string) (int64, error) {
	result := s.db.WithContext(ctx).Where("cook_id = ? AND session_key <> ?", cookID, keepKey).Delete(&models.Session{})
	return result.RowsAffected, result.Error
}

// RemoveExpired deletes sessions past their expiry
func (s *GormSessionStore) RemoveExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Where("expires_at <= ?", time.Now()).Delete(&models.Session{})
	return result.RowsAffected, result.Error
}
