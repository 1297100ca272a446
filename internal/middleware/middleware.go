// Package middleware holds the gin middleware of the kitchen service.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/franciscosanchezn/gin-kitchen/internal/auth"
	"github.com/franciscosanchezn/gin-kitchen/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
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

// Context keys set by SessionAuth
const (
	CookKey    = "cook"
	SessionKey = "session"
)

// SessionResolver resolves a session token to its live session
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (models.Session, error)
}

// CookLoader loads the cook a session belongs to
type CookLoader interface {
	GetCookByID(id uint) (models.Cook, error)
}

// SessionAuth identifies the cook behind the session cookie or a Bearer
// token. Requests without a valid session continue anonymously.
func SessionAuth(sessions SessionResolver, cooks CookLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			c.Next()
			return
		}

		session, err := sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, auth.ErrSessionNotFound) && !errors.Is(err, auth.ErrSessionExpired) &&
				!errors.Is(err, auth.ErrInvalidToken) {
				log.WithError(err).Error("Failed to resolve session")
			}
			c.Next()
			return
		}

		cook, err := cooks.GetCookByID(session.CookID)
		if err != nil || !cook.IsActive {
			log.WithField("cook_id", session.CookID).Debug("Session of missing or inactive cook")
			c.Next()
			return
		}

		c.Set(CookKey, &cook)
		c.Set(SessionKey, session)
		c.Next()
	}
}

// sessionToken reads the token from the session cookie, falling back to
// an "Authorization: Bearer" header
func sessionToken(c *gin.Context) string {
	if token, err := c.Cookie(auth.CookieName); err == nil && token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// CurrentCook returns the authenticated cook, or nil
func CurrentCook(c *gin.Context) *models.Cook {
	value, exists := c.Get(CookKey)
	if !exists {
		return nil
	}
	cook, _ := value.(*models.Cook)
	return cook
}

// CurrentSession returns the session of the request
func CurrentSession(c *gin.Context) (models.Session, bool) {
	value, exists := c.Get(SessionKey)
	if !exists {
		return models.Session{}, false
	}
	session, ok := value.(models.Session)
	return session, ok
}

// RequireLogin rejects anonymous requests with 401
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentCook(c) == nil {
			respondUnauthenticated(c)
			return
		}
		c.Next()
	}
}

func respondUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized,
		"Authentication credentials were not provided.",
		map[string]interface{}{"login_url": LoginURL + "?next=" + c.Request.URL.RequestURI()}))
}

// LoginURL is where anonymous callers are pointed to
const LoginURL = "/accounts/login/"
