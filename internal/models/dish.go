package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Dish is a menu item. Picture holds the storage name of the normalized
// image and is empty when the dish has no picture.
type Dish struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"size:63;uniqueIndex;not null"`
	Description string          `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	DishTypeID  uint            `json:"dish_type_id" gorm:"not null;index"`
	DishType    DishType        `json:"dish_type" gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Cooks       []Cook          `json:"cooks" gorm:"many2many:dish_cooks"`
	Ingredients []Ingredient    `json:"ingredients" gorm:"many2many:dish_ingredients"`
	Picture     string          `json:"picture,omitempty" gorm:"size:255"`
	PictureURL  string          `json:"picture_url,omitempty" gorm:"-"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (d Dish) String() string {
	return fmt.Sprintf("%s %s Price: %s", d.Name, d.DishType, d.Price.StringFixed(2))
}

// AbsoluteURL is the detail route of the dish
func (d Dish) AbsoluteURL() string {
	return fmt.Sprintf("/dishes/%d/", d.ID)
}

// HasPicture reports whether a picture is stored for the dish
func (d Dish) HasPicture() bool {
	return d.Picture != ""
}
