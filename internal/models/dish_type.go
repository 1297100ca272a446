package models

import "fmt"

// SentinelDishTypeName names the placeholder type dishes fall back to
// when their dish type is deleted
const SentinelDishTypeName = "None"

// DishType groups dishes, e.g. "Main Course"
type DishType struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:63;uniqueIndex;not null"`
}

func (d DishType) String() string {
	return d.Name
}

// AbsoluteURL is the detail route of the dish type
func (d DishType) AbsoluteURL() string {
	return fmt.Sprintf("/dish_types/%d/", d.ID)
}

// IsSentinel reports whether this is the fallback "None" type
func (d DishType) IsSentinel() bool {
	return d.Name == SentinelDishTypeName
}
