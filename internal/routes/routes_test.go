package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-kitchen/internal/auth"
	"github.com/franciscosanchezn/gin-kitchen/internal/forms"
	"github.com/franciscosanchezn/gin-kitchen/internal/media"
	"github.com/franciscosanchezn/gin-kitchen/internal/models"
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

type testApp struct {
	db     *gorm.DB
	router *gin.Engine
}

func newTestApp(t *testing.T, loginRate int) testApp {
	t.Helper()
	db := testutil.NewDB(t)
	storage := media.NewLocalStorage(t.TempDir(), "/media/")
	deps := Dependencies{
		Sessions:           auth.NewManager(db, []byte("routes-test-secret"), time.Hour),
		Cooks:              services.NewCookService(db),
		DishTypes:          services.NewDishTypeService(db),
		Ingredients:        services.NewIngredientService(db),
		Dishes:             services.NewDishService(db, storage, media.NewJPEGNormalizer(800, 85)),
		Index:              services.NewIndexService(db),
		MediaRoot:          storage.Root(),
		MediaURL:           "/media/",
		LoginRatePerMinute: loginRate,
	}
	return testApp{db: db, router: NewRouter(deps)}
}

func setupApp(t *testing.T) testApp {
	return newTestApp(t, 1000)
}

// request sends a request with the session token as cookie
func (a testApp) request(t *testing.T, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a testApp) get(t *testing.T, path, token string) *httptest.ResponseRecorder {
	return a.request(t, http.MethodGet, path, token, nil, "")
}

func (a testApp) postForm(t *testing.T, path, token string, values url.Values) *httptest.ResponseRecorder {
	return a.request(t, http.MethodPost, path, token, strings.NewReader(values.Encode()),
		"application/x-www-form-urlencoded")
}

// login signs the cook in and returns the session cookie value
func (a testApp) login(t *testing.T, username, password string) string {
	t.Helper()
	w := a.postForm(t, "/accounts/login/", "", url.Values{"username": {username}, "password": {password}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == auth.CookieName {
			return cookie.Value
		}
	}
	t.Fatal("login did not set the session cookie")
	return ""
}

func (a testApp) loginAs(t *testing.T, username string, opts ...testutil.CookOption) (models.Cook, string) {
	t.Helper()
	cook := testutil.CreateCook(t, a.db, username, opts...)
	return cook, a.login(t, username, testutil.Password)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func fieldErrors(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	errs, ok := decode(t, w)["errors"].(map[string]interface{})
	require.True(t, ok)
	return errs
}

func TestAnonymousRequestsAreRejected(t *testing.T) {
	app := setupApp(t)

	for _, path := range []string{"/", "/cooks/", "/dishes/", "/dish_types/", "/ingredients/", "/cooks/1/"} {
		t.Run(path, func(t *testing.T) {
			w := app.get(t, path, "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	assert.Equal(t, http.StatusOK, app.get(t, "/health", "").Code)
	assert.Equal(t, http.StatusOK, app.get(t, "/accounts/login/", "").Code)
}

func TestSwaggerDocs(t *testing.T) {
	app := setupApp(t)

	w := app.get(t, "/swagger/doc.json", "")
	require.Equal(t, http.StatusOK, w.Code)

	doc := decode(t, w)
	assert.Equal(t, "2.0", doc["swagger"])
	paths, ok := doc["paths"].(map[string]interface{})
	require.True(t, ok)
	for _, path := range []string{"/", "/accounts/login/", "/cooks/{id}/password-change/", "/dish_types/{id}/delete/", "/dishes/create/"} {
		assert.Contains(t, paths, path)
	}

	assert.Equal(t, http.StatusOK, app.get(t, "/swagger/index.html", "").Code)
}

func TestLoginAndLogout(t *testing.T) {
	app := setupApp(t)
	testutil.CreateCook(t, app.db, "chef")

	w := app.postForm(t, "/accounts/login/", "", url.Values{"username": {"chef"}, "password": {"wrong"}})
	errs := fieldErrors(t, w)
	assert.Equal(t, []interface{}{forms.MsgInvalidLogin}, errs[forms.NonFieldErrors])

	token := app.login(t, "chef", testutil.Password)

	w = app.get(t, "/", token)
	require.Equal(t, http.StatusOK, w.Code)
	counts := decode(t, w)["counts"].(map[string]interface{})
	assert.Equal(t, float64(1), counts["num_cooks"])

	w = app.request(t, http.MethodPost, "/accounts/logout/", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusUnauthorized, app.get(t, "/", token).Code)
}

func TestLoginRedirectTarget(t *testing.T) {
	app := setupApp(t)
	testutil.CreateCook(t, app.db, "chef")

	tests := []struct {
		next string
		want string
	}{
		{"/dishes/", "/dishes/"},
		{"https://evil.example", "/"},
		{"//evil.example", "/"},
		{"/\t/evil.example", "/"},
		{"/\n/evil.example", "/"},
		{"", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.next, func(t *testing.T) {
			w := app.postForm(t, "/accounts/login/?next="+url.QueryEscape(tt.next), "",
				url.Values{"username": {"chef"}, "password": {testutil.Password}})
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, decode(t, w)["success_url"])
		})
	}
}

func TestLoginIsRateLimited(t *testing.T) {
	app := newTestApp(t, 2)
	values := url.Values{"username": {"nobody"}, "password": {"wrong"}}

	assert.Equal(t, http.StatusBadRequest, app.postForm(t, "/accounts/login/", "", values).Code)
	assert.Equal(t, http.StatusBadRequest, app.postForm(t, "/accounts/login/", "", values).Code)
	assert.Equal(t, http.StatusTooManyRequests, app.postForm(t, "/accounts/login/", "", values).Code)
}

func TestCookListSearchOrderAndPages(t *testing.T) {
	app := setupApp(t)
	_, token := app.loginAs(t, "admin")
	for i := 0; i < 12; i++ {
		testutil.CreateCook(t, app.db, fmt.Sprintf("chef%02d", i))
	}

	w := app.get(t, "/cooks/?username=chef01", token)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Len(t, body["cook_list"], 1)
	assert.Equal(t, map[string]interface{}{"username": "chef01"}, body["search"])

	w = app.get(t, "/cooks/?order_by=username_desc,bogus&page=last", token)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, "username_desc", body["current_order"])
	page := body["page"].(map[string]interface{})
	assert.Equal(t, float64(2), page["number"])
	assert.Len(t, body["cook_list"], 3)

	assert.Equal(t, http.StatusNotFound, app.get(t, "/cooks/?page=3", token).Code)
	assert.Equal(t, http.StatusNotFound, app.get(t, "/cooks/?page=abc", token).Code)
	assert.Equal(t, http.StatusNotFound, app.get(t, "/cooks/abc/", token).Code)
	assert.Equal(t, http.StatusNotFound, app.get(t, "/cooks/999/", token).Code)
}

func TestCookDetailListsDishes(t *testing.T) {
	app := setupApp(t)
	cook, token := app.loginAs(t, "chef")
	soup := testutil.CreateDishType(t, app.db, "Soup")
	testutil.CreateDish(t, app.db, "Borscht", "4.00", soup, cook)

	w := app.get(t, cook.AbsoluteURL(), token)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	dishes := body["dishes"].([]interface{})
	require.Len(t, dishes, 1)
	assert.Equal(t, "Borscht", dishes[0].(map[string]interface{})["name"])
	assert.Equal(t, true, body["can_update"])
	assert.Equal(t, false, body["can_delete"])
}

func TestCookCreateRequiresStaff(t *testing.T) {
	app := setupApp(t)
	_, plain := app.loginAs(t, "chef")
	_, staff := app.loginAs(t, "boss", testutil.Staff)

	assert.Equal(t, http.StatusForbidden, app.get(t, "/cooks/create/", plain).Code)

	w := app.get(t, "/cooks/create/", staff)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w)["fields"], "is_staff")

	values := url.Values{
		"username":            {"newcook"},
		"password1":           {"kettle-drum-42"},
		"password2":           {"kettle-drum-41"},
		"first_name":          {"New"},
		"last_name":           {"Cook"},
		"years_of_experience": {"3"},
	}
	errs := fieldErrors(t, app.postForm(t, "/cooks/create/", staff, values))
	assert.Contains(t, errs, "password2")

	values.Set("password2", "kettle-drum-42")
	w = app.postForm(t, "/cooks/create/", staff, values)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)["cook"].(map[string]interface{})
	assert.Equal(t, "newcook", created["username"])
	assert.Equal(t, true, created["is_active"])
	assert.NotContains(t, created, "password")
	assert.Equal(t, fmt.Sprintf("/cooks/%v/", created["id"]), w.Header().Get("Location"))

	errs = fieldErrors(t, app.postForm(t, "/cooks/create/", staff, values))
	assert.Equal(t, []interface{}{"A user with that username already exists."}, errs["username"])
}

func TestCookUpdateRestrictsPrivilegeFields(t *testing.T) {
	app := setupApp(t)
	cook, token := app.loginAs(t, "chef")
	other := testutil.CreateCook(t, app.db, "other")

	w := app.get(t, cook.AbsoluteURL()+"update/", token)
	require.Equal(t, http.StatusOK, w.Code)
	fields := decode(t, w)["fields"]
	assert.NotContains(t, fields, "is_staff")
	assert.NotContains(t, fields, "is_active")

	values := url.Values{
		"username":            {"chef"},
		"first_name":          {"Renamed"},
		"years_of_experience": {"7"},
		"is_staff":            {"true"},
	}
	w = app.postForm(t, cook.AbsoluteURL()+"update/", token, values)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode(t, w)["cook"].(map[string]interface{})
	assert.Equal(t, "Renamed", updated["first_name"])
	assert.Equal(t, false, updated["is_staff"])

	assert.Equal(t, http.StatusForbidden, app.postForm(t, other.AbsoluteURL()+"update/", token, values).Code)
}

func TestCookDeletePermissions(t *testing.T) {
	app := setupApp(t)
	staff, staffToken := app.loginAs(t, "boss", testutil.Staff)
	root, rootToken := app.loginAs(t, "root", testutil.Superuser)
	victim := testutil.CreateCook(t, app.db, "victim")

	w := app.request(t, http.MethodPost, staff.AbsoluteURL()+"delete/", staffToken, nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code, "self delete")

	w = app.request(t, http.MethodPost, root.AbsoluteURL()+"delete/", staffToken, nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code, "staff deleting a superuser")

	w = app.get(t, victim.AbsoluteURL()+"delete/", staffToken)
	require.Equal(t, http.StatusOK, w.Code)
	w = app.request(t, http.MethodPost, victim.AbsoluteURL()+"delete/", staffToken, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/cooks/", decode(t, w)["success_url"])

	w = app.request(t, http.MethodPost, staff.AbsoluteURL()+"delete/", rootToken, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusUnauthorized, app.get(t, "/", staffToken).Code, "sessions of a deleted cook end")
}

func TestPasswordChangeKeepsCurrentSession(t *testing.T) {
	app := setupApp(t)
	cook, current := app.loginAs(t, "chef")
	other := app.login(t, "chef", testutil.Password)
	path := cook.AbsoluteURL() + "password-change/"

	w := app.get(t, path, current)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"old_password", "new_password1", "new_password2"}, decode(t, w)["fields"])

	errs := fieldErrors(t, app.postForm(t, path, current, url.Values{
		"old_password":  {"wrong"},
		"new_password1": {"fresh-basil-77"},
		"new_password2": {"fresh-basil-77"},
	}))
	assert.Contains(t, errs, "old_password")

	w = app.postForm(t, path, current, url.Values{
		"old_password":  {testutil.Password},
		"new_password1": {"fresh-basil-77"},
		"new_password2": {"fresh-basil-77"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, path+"done/", decode(t, w)["success_url"])

	assert.Equal(t, http.StatusOK, app.get(t, path+"done/", current).Code)
	assert.Equal(t, http.StatusUnauthorized, app.get(t, "/", other).Code)
	app.login(t, "chef", "fresh-basil-77")
}

func TestPasswordChangeOfAnotherCook(t *testing.T) {
	app := setupApp(t)
	_, staffToken := app.loginAs(t, "boss", testutil.Staff)
	_, rootToken := app.loginAs(t, "root", testutil.Superuser)
	victim, victimToken := app.loginAs(t, "chef")
	path := victim.AbsoluteURL() + "password-change/"

	assert.Equal(t, http.StatusForbidden, app.get(t, path, staffToken).Code)

	w := app.get(t, path, rootToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"new_password1", "new_password2"}, decode(t, w)["fields"])

	w = app.postForm(t, path, rootToken, url.Values{
		"new_password1": {"fresh-basil-77"},
		"new_password2": {"fresh-basil-77"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, http.StatusUnauthorized, app.get(t, "/", victimToken).Code)
	assert.Equal(t, http.StatusOK, app.get(t, "/", rootToken).Code)
}

func TestDishTypeDeleteMovesDishesToSentinel(t *testing.T) {
	app := setupApp(t)
	_, plain := app.loginAs(t, "chef")
	_, staff := app.loginAs(t, "boss", testutil.Staff)
	soup := testutil.CreateDishType(t, app.db, "Soup")
	borscht := testutil.CreateDish(t, app.db, "Borscht", "4.00", soup)
	path := fmt.Sprintf("/dish_types/%d/delete/", soup.ID)

	assert.Equal(t, http.StatusForbidden, app.request(t, http.MethodPost, path, plain, nil, "").Code)
	require.Equal(t, http.StatusOK, app.request(t, http.MethodPost, path, staff, nil, "").Code)

	w := app.get(t, borscht.AbsoluteURL(), plain)
	require.Equal(t, http.StatusOK, w.Code)
	dishType := decode(t, w)["dish"].(map[string]interface{})["dish_type"].(map[string]interface{})
	assert.Equal(t, models.SentinelDishTypeName, dishType["name"])

	w = app.request(t, http.MethodPost, fmt.Sprintf("/dish_types/%v/delete/", dishType["id"]), staff, nil, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDishTypeAndIngredientNames(t *testing.T) {
	app := setupApp(t)
	_, staff := app.loginAs(t, "boss", testutil.Staff)

	w := app.postForm(t, "/dish_types/create/", staff, url.Values{"name": {"Soup"}})
	require.Equal(t, http.StatusCreated, w.Code)
	errs := fieldErrors(t, app.postForm(t, "/dish_types/create/", staff, url.Values{"name": {"Soup"}}))
	assert.Equal(t, []interface{}{"Dish type with this Name already exists."}, errs["name"])

	w = app.postForm(t, "/ingredients/create/", staff, url.Values{"name": {"Beet"}})
	require.Equal(t, http.StatusCreated, w.Code)
	ingredient := decode(t, w)["ingredient"].(map[string]interface{})

	w = app.postForm(t, fmt.Sprintf("/ingredients/%v/update/", ingredient["id"]), staff, url.Values{"name": {"Beetroot"}})
	require.Equal(t, http.StatusOK, w.Code)

	w = app.get(t, "/ingredients/?name=root", staff)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["ingredient_list"], 1)

	errs = fieldErrors(t, app.postForm(t, "/ingredients/create/", staff, url.Values{"name": {""}}))
	assert.Contains(t, errs, "name")
}

func multipartDish(t *testing.T, fields url.Values, picture []byte) (io.Reader, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, values := range fields {
		for _, value := range values {
			require.NoError(t, writer.WriteField(name, value))
		}
	}
	if picture != nil {
		part, err := writer.CreateFormFile("picture", "pizza.png")
		require.NoError(t, err)
		_, err = part.Write(picture)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func TestDishCreateWithPicture(t *testing.T) {
	app := setupApp(t)
	cook, staff := app.loginAs(t, "boss", testutil.Staff)
	mains := testutil.CreateDishType(t, app.db, "Main Course")

	w := app.get(t, "/dishes/create/", staff)
	require.Equal(t, http.StatusOK, w.Code)
	choices := decode(t, w)["choices"].(map[string]interface{})
	assert.Len(t, choices["dish_type"], 1)
	assert.Len(t, choices["cooks"], 1)

	fields := url.Values{
		"name":      {"Pizza"},
		"price":     {"12.50"},
		"dish_type": {fmt.Sprint(mains.ID)},
		"cooks":     {fmt.Sprint(cook.ID)},
	}
	body, contentType := multipartDish(t, fields, testutil.PNG(t, 1600, 1200))
	w = app.request(t, http.MethodPost, "/dishes/create/", staff, body, contentType)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	dish := decode(t, w)["dish"].(map[string]interface{})
	assert.Equal(t, "12.5", dish["price"])
	assert.Len(t, dish["cooks"], 1)
	pictureURL, ok := dish["picture_url"].(string)
	require.True(t, ok)

	w = app.get(t, pictureURL, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []byte{0xFF, 0xD8}, w.Body.Bytes()[:2], "stored as JPEG")
}

func TestDishFormErrors(t *testing.T) {
	app := setupApp(t)
	_, staff := app.loginAs(t, "boss", testutil.Staff)
	mains := testutil.CreateDishType(t, app.db, "Main Course")

	tests := []struct {
		name   string
		fields url.Values
		field  string
	}{
		{"missing name", url.Values{"price": {"1.00"}, "dish_type": {fmt.Sprint(mains.ID)}}, "name"},
		{"zero price", url.Values{"name": {"Tea"}, "price": {"0"}, "dish_type": {fmt.Sprint(mains.ID)}}, "price"},
		{"unknown dish type", url.Values{"name": {"Tea"}, "price": {"1.00"}, "dish_type": {"999"}}, "dish_type"},
		{"unknown cook", url.Values{"name": {"Tea"}, "price": {"1.00"}, "dish_type": {fmt.Sprint(mains.ID)}, "cooks": {"999"}}, "cooks"},
		{"zero cook", url.Values{"name": {"Tea"}, "price": {"1.00"}, "dish_type": {fmt.Sprint(mains.ID)}, "cooks": {"0"}}, "cooks"},
		{"zero ingredient", url.Values{"name": {"Tea"}, "price": {"1.00"}, "dish_type": {fmt.Sprint(mains.ID)}, "ingredients": {"0"}}, "ingredients"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartDish(t, tt.fields, nil)
			errs := fieldErrors(t, app.request(t, http.MethodPost, "/dishes/create/", staff, body, contentType))
			assert.Contains(t, errs, tt.field)
		})
	}

	t.Run("not an image", func(t *testing.T) {
		fields := url.Values{"name": {"Tea"}, "price": {"1.00"}, "dish_type": {fmt.Sprint(mains.ID)}}
		body, contentType := multipartDish(t, fields, []byte("not an image"))
		errs := fieldErrors(t, app.request(t, http.MethodPost, "/dishes/create/", staff, body, contentType))
		assert.Contains(t, errs, "picture")
	})
}

func TestDishUpdateByRegularCook(t *testing.T) {
	app := setupApp(t)
	_, plain := app.loginAs(t, "chef")
	mains := testutil.CreateDishType(t, app.db, "Main Course")
	pasta := testutil.CreateDish(t, app.db, "Pasta", "9.00", mains)

	payload, err := json.Marshal(map[string]interface{}{
		"name":      "Pasta Carbonara",
		"price":     "10.00",
		"dish_type": mains.ID,
	})
	require.NoError(t, err)
	w := app.request(t, http.MethodPost, pasta.AbsoluteURL()+"update/", plain, bytes.NewReader(payload), "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Pasta Carbonara", decode(t, w)["dish"].(map[string]interface{})["name"])

	assert.Equal(t, http.StatusForbidden, app.request(t, http.MethodPost, pasta.AbsoluteURL()+"delete/", plain, nil, "").Code)
}

func TestDishListPagination(t *testing.T) {
	app := setupApp(t)
	_, token := app.loginAs(t, "chef")
	mains := testutil.CreateDishType(t, app.db, "Main Course")
	for i := 0; i < 8; i++ {
		testutil.CreateDish(t, app.db, fmt.Sprintf("Dish%d", i), "5.00", mains)
	}

	w := app.get(t, "/dishes/?order_by=price_desc", token)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["dish_list"], 6)
	assert.Equal(t, "price_desc", body["current_order"])

	w = app.get(t, "/dishes/?page=2", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["dish_list"], 2)
}
