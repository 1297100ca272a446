package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/franciscosanchezn/gin-kitchen/internal/auth"
	"github.com/franciscosanchezn/gin-kitchen/internal/forms"
	"github.com/franciscosanchezn/gin-kitchen/internal/middleware"
	"github.com/franciscosanchezn/gin-kitchen/internal/models"
	"github.com/franciscosanchezn/gin-kitchen/internal/services"
	"github.com/gin-gonic/gin"
)

const loginRedirectURL = "/"

// SessionIssuer starts and ends login sessions
type SessionIssuer interface {
	Login(ctx context.Context, cook models.Cook, userAgent string) (string, models.Session, error)
	Logout(ctx context.Context, session models.Session) error
	TTL() time.Duration
}

type AuthController struct {
	cooks        services.CookService
	sessions     SessionIssuer
	secureCookie bool
}

// NewAuthController creates the login and logout handlers. secureCookie
// restricts the session cookie to HTTPS.
func NewAuthController(cooks services.CookService, sessions SessionIssuer, secureCookie bool) *AuthController {
	return &AuthController{
		cooks:        cooks,
		sessions:     sessions,
		secureCookie: secureCookie,
	}
}

// LoginForm advertises the login fields and where the cook goes next
// @Summary Login form
// @Description Login fields and the redirect target
// @Tags accounts
// @Produce json
// @Param next query string false "Local path to go to after login"
// @Success 200 {object} map[string]interface{}
// @Router /accounts/login/ [get]
func (ac *AuthController) LoginForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"fields": forms.LoginFields,
		"next":   redirectTarget(c.Query("next")),
	})
}

// Login checks the credentials and sets the session cookie. The token is
// returned as well for clients that send it as a Bearer header.
// @Summary Log in
// @Description Authenticate a cook and start a session
// @Tags accounts
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param next query string false "Local path to go to after login"
// @Param credentials body forms.LoginForm true "Username and password"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 429 {object} models.APIError
// @Router /accounts/login/ [post]
func (ac *AuthController) Login(c *gin.Context) {
	var form forms.LoginForm
	if !bind(c, &form) {
		return
	}
	if errs := form.Validate(); errs.Any() {
		respondFieldErrors(c, errs)
		return
	}

	cook, err := ac.cooks.Authenticate(form.Username, form.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			respondFieldError(c, forms.NonFieldErrors, forms.MsgInvalidLogin)
			return
		}
		respondError(c, err)
		return
	}

	token, session, err := ac.sessions.Login(c.Request.Context(), cook, c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, token, int(ac.sessions.TTL().Seconds()), "/", "", ac.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{
		"cook":        cook,
		"token":       token,
		"token_type":  "Bearer",
		"expires_at":  session.ExpiresAt,
		"success_url": redirectTarget(c.DefaultQuery("next", c.PostForm("next"))),
	})
}

// Logout ends the current session and clears the cookie
// @Summary Log out
// @Description End the current session
// @Tags accounts
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /accounts/logout/ [post]
func (ac *AuthController) Logout(c *gin.Context) {
	if session, ok := middleware.CurrentSession(c); ok {
		if err := ac.sessions.Logout(c.Request.Context(), session); err != nil {
			respondError(c, err)
			return
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, "", -1, "/", "", ac.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"logged_out": true, "success_url": middleware.LoginURL})
}

// redirectTarget accepts only local absolute paths. Browsers drop tabs and
// newlines from URLs, so any control character is rejected.
func redirectTarget(next string) string {
	if strings.IndexFunc(next, unicode.IsControl) >= 0 || strings.Contains(next, "\\") {
		return loginRedirectURL
	}
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return loginRedirectURL
	}
	target, err := url.Parse(next)
	if err != nil || target.Scheme != "" || target.Host != "" {
		return loginRedirectURL
	}
	return next
}
