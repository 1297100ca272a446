package models

import "fmt"

type Ingredient struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:63;uniqueIndex;not null"`
}

func (i Ingredient) String() string {
	return i.Name
}

// AbsoluteURL is the detail route of the ingredient
func (i Ingredient) AbsoluteURL() string {
	return fmt.Sprintf("/ingredients/%d/", i.ID)
}
