// Package testutil holds fixtures shared by the package tests.
package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/franciscosanchezn/gin-kitchen/internal/database"
	"github.com/franciscosanchezn/gin-kitchen/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Password is the password of every cook created by CreateCook
const Password = "user12test"

// NewDB opens an in-memory database with the schema applied
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CookOption adjusts a cook before it is inserted
type CookOption func(*models.Cook)

// Staff marks the cook as staff
func Staff(c *models.Cook) { c.IsStaff = true }

// Superuser marks the cook as superuser and staff
func Superuser(c *models.Cook) {
	c.IsSuperuser = true
	c.IsStaff = true
}

// Inactive deactivates the cook
func Inactive(c *models.Cook) { c.IsActive = false }

var faker = gofakeit.New(42)

// CreateCook inserts an active cook with the given username and Password
func CreateCook(t *testing.T, db *gorm.DB, username string, opts ...CookOption) models.Cook {
	t.Helper()
	cook := models.Cook{
		Username:          username,
		FirstName:         faker.FirstName(),
		LastName:          faker.LastName(),
		Email:             faker.Email(),
		YearsOfExperience: uint(faker.Number(0, 20)),
		IsActive:          true,
	}
	for _, opt := range opts {
		opt(&cook)
	}
	require.NoError(t, cook.SetPassword(Password))
	require.NoError(t, db.Create(&cook).Error)
	return cook
}

// CreateDishType inserts a dish type
func CreateDishType(t *testing.T, db *gorm.DB, name string) models.DishType {
	t.Helper()
	dishType := models.DishType{Name: name}
	require.NoError(t, db.Create(&dishType).Error)
	return dishType
}

// CreateIngredient inserts an ingredient
func CreateIngredient(t *testing.T, db *gorm.DB, name string) models.Ingredient {
	t.Helper()
	ingredient := models.Ingredient{Name: name}
	require.NoError(t, db.Create(&ingredient).Error)
	return ingredient
}

// CreateDish inserts a dish of the given type assigned to cooks
func CreateDish(t *testing.T, db *gorm.DB, name, price string, dishType models.DishType, cooks ...models.Cook) models.Dish {
	t.Helper()
	dish := models.Dish{
		Name:        name,
		Description: faker.Sentence(8),
		Price:       decimal.RequireFromString(price),
		DishTypeID:  dishType.ID,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(&dish).Error)
	if len(cooks) > 0 {
		require.NoError(t, db.Model(&dish).Association("Cooks").Append(cooks))
	}
	return dish
}

// PNG encodes a width x height test image
func PNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, x%height, color.NRGBA{R: 180, G: 40, B: 40, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
