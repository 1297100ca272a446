package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-kitchen/internal/listing"
	"github.com/franciscosanchezn/gin-kitchen/internal/models"
	"github.com/franciscosanchezn/gin-kitchen/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCooksSearch(t *testing.T) {
	db := testutil.NewDB(t)
	for i := 0; i < 10; i++ {
		testutil.CreateCook(t, db, fmt.Sprintf("chef%d", i))
	}
	service := NewCookService(db)

	result, err := service.ListCooks(listing.Params{Search: "chef1"})
	require.NoError(t, err)

	require.Len(t, result.Items, 1)
	assert.Equal(t, "chef1", result.Items[0].Username)

	all, err := service.ListCooks(listing.Params{OrderBy: "username_desc"})
	require.NoError(t, err)
	assert.Len(t, all.Items, listing.CookPageSize)
	assert.Equal(t, "chef9", all.Items[0].Username)
}

func TestCreateCook(t *testing.T) {
	db := testutil.NewDB(t)
	service := NewCookService(db)
	testutil.CreateCook(t, db, "taken")

	cook := models.Cook{Username: "fresh", FirstName: "New", LastName: "Cook", IsActive: true}
	require.NoError(t, cook.SetPassword("user12test"))

	created, err := service.CreateCook(cook)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.DateJoined.IsZero())

	cook.Username = "taken"
	_, err = service.CreateCook(cook)
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestUpdateCook(t *testing.T) {
	db := testutil.NewDB(t)
	service := NewCookService(db)
	cook := testutil.CreateCook(t, db, "chef", testutil.Staff)
	testutil.CreateCook(t, db, "other")

	cook.Username = "renamed"
	cook.IsStaff = false
	cook.YearsOfExperience = 12
	updated, err := service.UpdateCook(cook)
	require.NoError(t, err)

	assert.Equal(t, "renamed", updated.Username)
	assert.False(t, updated.IsStaff)
	assert.Equal(t, uint(12), updated.YearsOfExperience)
	assert.True(t, updated.CheckPassword(testutil.Password), "password untouched")

	cook.Username = "other"
	_, err = service.UpdateCook(cook)
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = service.UpdateCook(models.Cook{ID: 999, Username: "ghost"})
	assert.ErrorIs(t, err, ErrCookNotFound)
}

func TestSetPassword(t *testing.T) {
	db := testutil.NewDB(t)
	service := NewCookService(db)
	cook := testutil.CreateCook(t, db, "chef")

	require.NoError(t, service.SetPassword(cook.ID, "brand-new-secret"))

	stored, err := service.GetCookByID(cook.ID)
	require.NoError(t, err)
	assert.True(t, stored.CheckPassword("brand-new-secret"))
	assert.False(t, stored.CheckPassword(testutil.Password))
}

func TestAuthenticate(t *testing.T) {
	db := testutil.NewDB(t)
	service := NewCookService(db)
	testutil.CreateCook(t, db, "chef")
	testutil.CreateCook(t, db, "retired", testutil.Inactive)

	cook, err := service.Authenticate("chef", testutil.Password)
	require.NoError(t, err)
	require.NotNil(t, cook.LastLogin)
	assert.WithinDuration(t, time.Now(), *cook.LastLogin, time.Minute)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "chef", "wrong"},
		{"unknown user", "nobody", testutil.Password},
		{"inactive user", "retired", testutil.Password},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Authenticate(tt.username, tt.password)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestDeleteCookRemovesLinksAndSessions(t *testing.T) {
	db := testutil.NewDB(t)
	service := NewCookService(db)
	cook := testutil.CreateCook(t, db, "chef")
	dishType := testutil.CreateDishType(t, db, "Soup")
	dish := testutil.CreateDish(t, db, "Borscht", "4.00", dishType, cook)
	require.NoError(t, db.Create(&models.Session{Key: "k1", CookID: cook.ID, ExpiresAt: time.Now().Add(time.Hour)}).Error)

	require.NoError(t, service.DeleteCook(cook.ID))

	_, err := service.GetCookByID(cook.ID)
	assert.ErrorIs(t, err, ErrCookNotFound)

	var links, sessions int64
	require.NoError(t, db.Table("dish_cooks").Where("dish_id = ?", dish.ID).Count(&links).Error)
	require.NoError(t, db.Model(&models.Session{}).Where("cook_id = ?", cook.ID).Count(&sessions).Error)
	assert.Zero(t, links)
	assert.Zero(t, sessions)

	assert.ErrorIs(t, service.DeleteCook(cook.ID), ErrCookNotFound)
}

func TestDeleteDishTypeReassignsToSentinel(t *testing.T) {
	db := testutil.NewDB(t)
	service := NewDishTypeService(db)
	soup := testutil.CreateDishType(t, db, "Soup")
	borscht := testutil.CreateDish(t, db, "Borscht", "4.00", soup)

	require.NoError(t, service.DeleteDishType(soup.ID))

	_, err := service.GetDishTypeByID(soup.ID)
	assert.ErrorIs(t, err, ErrDishTypeNotFound)

	var dish models.Dish
	require.NoError(t, db.Preload("DishType").First(&dish, borscht.ID).Error)
	assert.Equal(t, models.SentinelDishTypeName, dish.DishType.Name)
	assert.True(t, dish.DishType.IsSentinel())

	t.Run("sentinel cannot be deleted", func(t *testing.T) {
		err := service.DeleteDishType(dish.DishTypeID)
		assert.ErrorIs(t, err, ErrSentinelProtected)
	})

	t.Run("sentinel is reused", func(t *testing.T) {
		salad := testutil.CreateDishType(t, db, "Salad")
		testutil.CreateDish(t, db, "Caesar", "6.00", salad)
		require.NoError(t, service.DeleteDishType(salad.ID))

		var sentinels int64
		require.NoError(t, db.Model(&models.DishType{}).Where("name = ?", models.SentinelDishTypeName).Count(&sentinels).Error)
		assert.Equal(t, int64(1), sentinels)
	})
}

func TestDeleteUnusedDishTypeCreatesNoSentinel(t *testing.T) {
	db := testutil.NewDB(t)
	service := NewDishTypeService(db)
	soup := testutil.CreateDishType(t, db, "Soup")

	require.NoError(t, service.DeleteDishType(soup.ID))

	all, err := service.AllDishTypes()
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.ErrorIs(t, service.DeleteDishType(soup.ID), ErrDishTypeNotFound)
}

func TestDishTypeNames(t *testing.T) {
	db := testutil.NewDB(t)
	service := NewDishTypeService(db)

	soup, err := service.CreateDishType(models.DishType{Name: "Soup"})
	require.NoError(t, err)
	_, err = service.CreateDishType(models.DishType{Name: "Soup"})
	assert.ErrorIs(t, err, ErrNameTaken)

	salad, err := service.CreateDishType(models.DishType{Name: "Salad"})
	require.NoError(t, err)
	salad.Name = "Soup"
	_, err = service.UpdateDishType(salad)
	assert.ErrorIs(t, err, ErrNameTaken)

	soup.Name = "Soups"
	renamed, err := service.UpdateDishType(soup)
	require.NoError(t, err)
	assert.Equal(t, "Soups", renamed.Name)

	page, err := service.ListDishTypes(listing.Params{OrderBy: "name_desc"})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Soups", page.Items[0].Name)
}

func TestIngredients(t *testing.T) {
	db := testutil.NewDB(t)
	service := NewIngredientService(db)
	dishType := testutil.CreateDishType(t, db, "Soup")

	tomato, err := service.CreateIngredient(models.Ingredient{Name: "Tomato"})
	require.NoError(t, err)
	_, err = service.CreateIngredient(models.Ingredient{Name: "Tomato"})
	assert.ErrorIs(t, err, ErrNameTaken)
	_, err = service.CreateIngredient(models.Ingredient{Name: "Basil"})
	require.NoError(t, err)

	found, err := service.ListIngredients(listing.Params{Search: "TOM"})
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, tomato.ID, found.Items[0].ID)

	dish := testutil.CreateDish(t, db, "Gazpacho", "5.00", dishType)
	require.NoError(t, db.Model(&dish).Association("Ingredients").Append(&tomato))

	require.NoError(t, service.DeleteIngredient(tomato.ID))

	var links int64
	require.NoError(t, db.Table("dish_ingredients").Where("dish_id = ?", dish.ID).Count(&links).Error)
	assert.Zero(t, links)
	_, err = service.GetIngredientByID(tomato.ID)
	assert.ErrorIs(t, err, ErrIngredientNotFound)
}

func TestIndexCounts(t *testing.T) {
	db := testutil.NewDB(t)
	cook := testutil.CreateCook(t, db, "chef")
	dishType := testutil.CreateDishType(t, db, "Soup")
	testutil.CreateDish(t, db, "Borscht", "4.00", dishType, cook)
	testutil.CreateIngredient(t, db, "Beet")

	counts, err := NewIndexService(db).Counts()
	require.NoError(t, err)

	assert.Equal(t, Counts{Cooks: 1, Dishes: 1, DishTypes: 1, Ingredients: 1}, counts)
}
