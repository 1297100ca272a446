package forms

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/franciscosanchezn/gin-kitchen/internal/models"
	"github.com/shopspring/decimal"
)

const (
	priceMaxDigits     = 10
	priceDecimalPlaces = 2

	msgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."
)

var minPrice = decimal.New(1, -2)

// DishFields lists the dish form fields
var DishFields = []string{"name", "description", "price", "dish_type", "cooks", "ingredients", "picture"}

// DishForm creates or updates a dish. The picture upload is read from the
// multipart body separately.
type DishForm struct {
	Name         string      `form:"name" json:"name" validate:"required,max=63"`
	Description  string      `form:"description" json:"description"`
	Price        json.Number `form:"price" json:"price" validate:"required"`
	DishType     json.Number `form:"dish_type" json:"dish_type" validate:"required"`
	Cooks        []uint      `form:"cooks" json:"cooks"`
	Ingredients  []uint      `form:"ingredients" json:"ingredients"`
	ClearPicture bool        `form:"picture-clear" json:"picture-clear"`

	price      decimal.Decimal
	dishTypeID uint
}

// Validate cleans the submitted values and returns the field errors
func (f *DishForm) Validate() FieldErrors {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)

	errs := validateStruct(f)
	if !errs.Has("price") {
		f.price, _ = parsePrice(errs, "price", f.Price.String())
	}
	if !errs.Has("dish_type") {
		id, err := strconv.ParseUint(strings.TrimSpace(f.DishType.String()), 10, 64)
		if err != nil || id == 0 {
			errs.Add("dish_type", msgInvalidChoice)
		}
		f.dishTypeID = uint(id)
	}
	checkChoices(errs, "cooks", f.Cooks)
	checkChoices(errs, "ingredients", f.Ingredients)
	return errs
}

// checkChoices rejects the zero ID, which no stored record can have
func checkChoices(errs FieldErrors, field string, ids []uint) {
	for _, id := range ids {
		if id == 0 {
			errs.Add(field, InvalidChoice(id))
			return
		}
	}
}

// Dish builds the record described by the form. Cooks and ingredients
// carry only their IDs.
func (f *DishForm) Dish() models.Dish {
	dish := models.Dish{
		Name:        f.Name,
		Description: f.Description,
		Price:       f.price,
		DishTypeID:  f.dishTypeID,
		Cooks:       make([]models.Cook, 0, len(f.Cooks)),
		Ingredients: make([]models.Ingredient, 0, len(f.Ingredients)),
	}
	for _, id := range uniqueIDs(f.Cooks) {
		dish.Cooks = append(dish.Cooks, models.Cook{ID: id})
	}
	for _, id := range uniqueIDs(f.Ingredients) {
		dish.Ingredients = append(dish.Ingredients, models.Ingredient{ID: id})
	}
	return dish
}

// InvalidChoice is the message for a selected ID that does not exist
func InvalidChoice(id uint) string {
	return fmt.Sprintf("Select a valid choice. %d is not one of the available choices.", id)
}

// DishInitial is the dish form prefilled from a stored dish
func DishInitial(dish models.Dish) map[string]interface{} {
	cooks := make([]uint, 0, len(dish.Cooks))
	for _, cook := range dish.Cooks {
		cooks = append(cooks, cook.ID)
	}
	ingredients := make([]uint, 0, len(dish.Ingredients))
	for _, ingredient := range dish.Ingredients {
		ingredients = append(ingredients, ingredient.ID)
	}
	return map[string]interface{}{
		"name":        dish.Name,
		"description": dish.Description,
		"price":       dish.Price.StringFixed(priceDecimalPlaces),
		"dish_type":   dish.DishTypeID,
		"cooks":       cooks,
		"ingredients": ingredients,
		"picture":     dish.Picture,
	}
}

// parsePrice accepts at most 10 digits with 2 decimal places and a minimum of 0.01
func parsePrice(errs FieldErrors, field, raw string) (decimal.Decimal, bool) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		errs.Add(field, "Enter a number.")
		return decimal.Decimal{}, false
	}

	coefficient := price.Coefficient()
	digits := len(coefficient.Abs(coefficient).String())
	places := 0
	if exp := int(price.Exponent()); exp < 0 {
		places = -exp
	} else {
		digits += exp
	}
	if places > digits {
		digits = places
	}

	switch {
	case digits > priceMaxDigits:
		errs.Add(field, fmt.Sprintf("Ensure that there are no more than %d digits in total.", priceMaxDigits))
	case places > priceDecimalPlaces:
		errs.Add(field, fmt.Sprintf("Ensure that there are no more than %d decimal places.", priceDecimalPlaces))
	case digits-places > priceMaxDigits-priceDecimalPlaces:
		errs.Add(field, fmt.Sprintf("Ensure that there are no more than %d digits before the decimal point.",
			priceMaxDigits-priceDecimalPlaces))
	case price.LessThan(minPrice):
		errs.Add(field, "Ensure this value is greater than or equal to 0.01.")
	default:
		return price, true
	}
	return decimal.Decimal{}, false
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	return unique
}
