package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-kitchen/internal/auth"
	"github.com/franciscosanchezn/gin-kitchen/internal/models"
	"github.com/franciscosanchezn/gin-kitchen/internal/permissions"
	"github.com/franciscosanchezn/gin-kitchen/internal/services"
	"github.com/franciscosanchezn/gin-kitchen/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type sessionFixture struct {
	db      *gorm.DB
	router  *gin.Engine
	manager *auth.Manager
}

// setupSessionRouter serves GET /whoami behind SessionAuth and handlers
func setupSessionRouter(t *testing.T, handlers ...gin.HandlerFunc) sessionFixture {
	t.Helper()
	db := testutil.NewDB(t)
	manager := auth.NewManager(db, []byte("middleware-test-secret"), time.Hour)

	router := gin.New()
	router.Use(SessionAuth(manager, services.NewCookService(db)))
	chain := append(handlers, func(c *gin.Context) {
		response := gin.H{"authenticated": false}
		if cook := CurrentCook(c); cook != nil {
			session, _ := CurrentSession(c)
			response["authenticated"] = true
			response["username"] = cook.Username
			response["session_cook"] = session.CookID
		}
		c.JSON(http.StatusOK, response)
	})
	router.GET("/whoami", chain...)

	return sessionFixture{db: db, router: router, manager: manager}
}

func (f sessionFixture) login(t *testing.T, cook models.Cook) string {
	t.Helper()
	token, _, err := f.manager.Login(context.Background(), cook, "go-test")
	require.NoError(t, err)
	return token
}

func (f sessionFixture) whoami(t *testing.T, setup func(*http.Request)) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if setup != nil {
		setup(req)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func bearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func TestSessionAuthFromCookieAndHeader(t *testing.T) {
	f := setupSessionRouter(t)
	cook := testutil.CreateCook(t, f.db, "chef")
	token := f.login(t, cook)

	tests := []struct {
		name  string
		setup func(*http.Request)
	}{
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token}) }},
		{"bearer", bearer(token)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := f.whoami(t, tt.setup)
			assert.Equal(t, http.StatusOK, code)
			assert.Equal(t, "chef", body["username"])
			assert.Equal(t, float64(cook.ID), body["session_cook"])
		})
	}
}

func TestSessionAuthContinuesAnonymously(t *testing.T) {
	f := setupSessionRouter(t)
	retired := testutil.CreateCook(t, f.db, "retired")
	retiredToken := f.login(t, retired)
	require.NoError(t, f.db.Model(&retired).Update("is_active", false).Error)

	tests := []struct {
		name  string
		setup func(*http.Request)
	}{
		{"no token", nil},
		{"garbage cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "nope"}) }},
		{"wrong scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") }},
		{"inactive cook", bearer(retiredToken)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := f.whoami(t, tt.setup)
			assert.Equal(t, http.StatusOK, code)
			assert.Equal(t, false, body["authenticated"])
		})
	}
}

func TestRequireLogin(t *testing.T) {
	f := setupSessionRouter(t, RequireLogin())
	token := f.login(t, testutil.CreateCook(t, f.db, "chef"))

	code, body := f.whoami(t, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, models.ErrUnauthorized, body["code"])
	details, ok := body["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "/accounts/login/?next=/whoami", details["login_url"])

	code, body = f.whoami(t, bearer(token))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "chef", body["username"])
}

func TestAuthorize(t *testing.T) {
	f := setupSessionRouter(t, Authorize(permissions.DishCreate))
	staffToken := f.login(t, testutil.CreateCook(t, f.db, "boss", testutil.Staff))
	plainToken := f.login(t, testutil.CreateCook(t, f.db, "chef"))

	code, _ := f.whoami(t, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body := f.whoami(t, bearer(plainToken))
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, models.ErrForbidden, body["code"])
	assert.Equal(t, permissions.ErrStaffRequired.Reason, body["message"])

	code, _ = f.whoami(t, bearer(staffToken))
	assert.Equal(t, http.StatusOK, code)
}

func TestRateLimit(t *testing.T) {
	router := gin.New()
	router.POST("/login", RateLimit(PerMinute(2)), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	send := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, send("10.0.0.1:1234"))
	assert.Equal(t, http.StatusNoContent, send("10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:1234"))
	assert.Equal(t, http.StatusNoContent, send("10.0.0.2:1234"), "limits are per IP")
}

func TestUnlimitedRate(t *testing.T) {
	limiter := PerMinute(0)
	for i := 0; i < 100; i++ {
		require.True(t, limiter.Allow("10.0.0.1"))
	}
}

func TestClientLimiterForgetsIdleClients(t *testing.T) {
	limiter := PerMinute(5)
	for i := 0; i <= pruneAbove; i++ {
		limiter.Allow(fmt.Sprintf("10.1.%d.%d", i/256, i%256))
	}
	for _, client := range limiter.clients {
		client.seen = time.Now().Add(-2 * forgetAfter)
	}

	require.True(t, limiter.Allow("10.0.0.1"))

	assert.Len(t, limiter.clients, 1)
	assert.Contains(t, limiter.clients, "10.0.0.1")
}

func TestMetricsEndpoint(t *testing.T) {
	router := gin.New()
	router.Use(Metrics())
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	router.GET("/metrics", MetricsHandler())

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `kitchen_http_requests_total{method="GET",route="/ping",status="200"}`)
}
