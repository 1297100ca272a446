// Package auth manages cook login sessions. A session lives in the
// sessions table and is referenced by a signed token kept in a cookie.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/franciscosanchezn/gin-kitchen/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// SetLogLevel aligns the package logger with the application level
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// CookieName is the name of the cookie holding the session token
const CookieName = "sessionid"

// Manager issues, resolves and revokes login sessions
type Manager struct {
	store  *GormSessionStore
	signer *TokenSigner
	ttl    time.Duration
}

// NewManager creates a Manager whose sessions last ttl
func NewManager(db *gorm.DB, secret []byte, ttl time.Duration) *Manager {
	return &Manager{
		store:  NewGormSessionStore(db),
		signer: NewTokenSigner(secret),
		ttl:    ttl,
	}
}

// TTL returns the lifetime of new sessions
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Login starts a session for cook and returns its signed token
func (m *Manager) Login(ctx context.Context, cook models.Cook, userAgent string) (string, models.Session, error) {
	session, err := m.store.Create(ctx, cook.ID, userAgent, m.ttl)
	if err != nil {
		return "", models.Session{}, fmt.Errorf("creating session: %w", err)
	}
	token, err := m.signer.Sign(cook.ID, session.Key, session.CreatedAt, session.ExpiresAt)
	if err != nil {
		_ = m.store.Remove(ctx, session.Key)
		return "", models.Session{}, err
	}
	log.WithFields(logrus.Fields{"cook_id": cook.ID, "expires_at": session.ExpiresAt}).Info("Session started")
	return token, session, nil
}

// Resolve returns the live session a token refers to
func (m *Manager) Resolve(ctx context.Context, token string) (models.Session, error) {
	claims, err := m.signer.Parse(token)
	if err != nil {
		return models.Session{}, err
	}
	cookID, err := claims.CookID()
	if err != nil {
		return models.Session{}, err
	}
	session, err := m.store.Get(ctx, claims.SessionKey)
	if err != nil {
		return models.Session{}, err
	}
	if session.CookID != cookID {
		return models.Session{}, ErrInvalidToken
	}
	return session, nil
}

// Logout revokes the session
func (m *Manager) Logout(ctx context.Context, session models.Session) error {
	if err := m.store.Remove(ctx, session.Key); err != nil {
		return err
	}
	log.WithField("cook_id", session.CookID).Info("Session ended")
	return nil
}

// RevokeOthers ends every session of the cook but the current one
func (m *Manager) RevokeOthers(ctx context.Context, current models.Session) error {
	n, err := m.store.RemoveOthers(ctx, current.CookID, current.Key)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"cook_id": current.CookID, "revoked": n}).Info("Other sessions revoked")
	return nil
}

// PurgeExpired removes sessions past their expiry
func (m *Manager) PurgeExpired(ctx context.Context) (int64, error) {
	return m.store.RemoveExpired(ctx)
}

// RevokeAll ends every session of the cook
func (m *Manager) RevokeAll(ctx context.Context, cookID uint) error {
	n, err := m.store.RemoveOthers(ctx, cookID, "")
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"cook_id": cookID, "revoked": n}).Info("Sessions revoked")
	return nil
}
