package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookString(t *testing.T) {
	cook := Cook{ID: 3, Username: "chef1", FirstName: "John", LastName: "Doe"}

	assert.Equal(t, "chef1: John Doe", cook.String())
	assert.Equal(t, "John Doe", cook.FullName())
	assert.Equal(t, "/cooks/3/", cook.AbsoluteURL())
}

func TestCookFullNameWithMissingParts(t *testing.T) {
	assert.Equal(t, "John", Cook{FirstName: "John"}.FullName())
	assert.Equal(t, "Doe", Cook{LastName: "Doe"}.FullName())
	assert.Equal(t, "", Cook{}.FullName())
}

func TestCookPassword(t *testing.T) {
	var cook Cook
	require.NoError(t, cook.SetPassword("testpass123"))

	assert.NotEqual(t, "testpass123", cook.Password)
	assert.True(t, cook.CheckPassword("testpass123"))
	assert.False(t, cook.CheckPassword("wrong"))
}

func TestCookWithoutPasswordNeverMatches(t *testing.T) {
	var cook Cook
	assert.False(t, cook.CheckPassword(""))
}

func TestCookIsPrivileged(t *testing.T) {
	assert.False(t, Cook{}.IsPrivileged())
	assert.True(t, Cook{IsStaff: true}.IsPrivileged())
	assert.True(t, Cook{IsSuperuser: true}.IsPrivileged())
}

func TestDishTypeString(t *testing.T) {
	dishType := DishType{ID: 2, Name: "Main Course"}

	assert.Equal(t, "Main Course", dishType.String())
	assert.Equal(t, "/dish_types/2/", dishType.AbsoluteURL())
	assert.False(t, dishType.IsSentinel())
	assert.True(t, DishType{Name: SentinelDishTypeName}.IsSentinel())
}

func TestIngredientString(t *testing.T) {
	ingredient := Ingredient{ID: 5, Name: "Tomato"}

	assert.Equal(t, "Tomato", ingredient.String())
	assert.Equal(t, "/ingredients/5/", ingredient.AbsoluteURL())
}

func TestDishString(t *testing.T) {
	dish := Dish{
		ID:       7,
		Name:     "Pasta",
		Price:    decimal.RequireFromString("9.99"),
		DishType: DishType{Name: "Main Course"},
	}

	assert.Equal(t, "Pasta Main Course Price: 9.99", dish.String())
	assert.Equal(t, "/dishes/7/", dish.AbsoluteURL())
	assert.False(t, dish.HasPicture())
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	session := Session{ExpiresAt: now.Add(time.Minute)}

	assert.False(t, session.Expired(now))
	assert.True(t, session.Expired(now.Add(time.Minute)))
}

func TestNewAPIError(t *testing.T) {
	err := NewAPIError(ErrForbidden, "nope")
	assert.Equal(t, ErrForbidden, err.Code)
	assert.Nil(t, err.Details)

	withDetails := NewAPIError(ErrNotFound, "missing", map[string]interface{}{"id": 4})
	assert.Equal(t, 4, withDetails.Details["id"])
}
