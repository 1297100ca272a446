package database

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/franciscosanchezn/gin-kitchen/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SeedPassword is the password given to every generated cook
const SeedPassword = "kitchen-seed-pass"

var seedDishTypes = []string{"Appetizer", "Main Course", "Soup", "Salad", "Dessert"}

// SeedOptions controls how much development data is generated
type SeedOptions struct {
	Cooks       int
	Ingredients int
	Dishes      int
	// Seed makes the generated data reproducible when non-zero
	Seed uint64
}

// DefaultSeedOptions is what the server uses when SEED_DATABASE is enabled
var DefaultSeedOptions = SeedOptions{Cooks: 8, Ingredients: 20, Dishes: 15}

// IsEmpty reports whether no dish has been stored yet
func IsEmpty(db *gorm.DB) (bool, error) {
	var count int64
	if err := db.Model(&models.Dish{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}

// Seed fills the database with generated cooks, dish types, ingredients and dishes
func Seed(db *gorm.DB, opts SeedOptions) error {
	log.WithFields(map[string]interface{}{
		"cooks":       opts.Cooks,
		"ingredients": opts.Ingredients,
		"dishes":      opts.Dishes,
	}).Info("Seeding database with initial data")

	faker := gofakeit.New(opts.Seed)

	return db.Transaction(func(tx *gorm.DB) error {
		dishTypes := make([]models.DishType, 0, len(seedDishTypes))
		for _, name := range seedDishTypes {
			dishType := models.DishType{Name: name}
			if err := tx.Where(models.DishType{Name: name}).FirstOrCreate(&dishType).Error; err != nil {
				return fmt.Errorf("seeding dish type %q: %w", name, err)
			}
			dishTypes = append(dishTypes, dishType)
		}

		ingredients := make([]models.Ingredient, 0, opts.Ingredients)
		for _, name := range uniqueNames(opts.Ingredients, func() string {
			if faker.Bool() {
				return faker.Vegetable()
			}
			return faker.Fruit()
		}) {
			ingredient := models.Ingredient{Name: name}
			if err := tx.Create(&ingredient).Error; err != nil {
				return fmt.Errorf("seeding ingredient %q: %w", name, err)
			}
			ingredients = append(ingredients, ingredient)
		}

		cooks := make([]models.Cook, 0, opts.Cooks)
		for _, username := range uniqueNames(opts.Cooks, faker.Username) {
			cook := models.Cook{
				Username:          strings.ToLower(username),
				FirstName:         faker.FirstName(),
				LastName:          faker.LastName(),
				Email:             faker.Email(),
				YearsOfExperience: uint(faker.Number(0, 30)),
				IsActive:          true,
			}
			if err := cook.SetPassword(SeedPassword); err != nil {
				return err
			}
			if err := tx.Create(&cook).Error; err != nil {
				return fmt.Errorf("seeding cook %q: %w", username, err)
			}
			cooks = append(cooks, cook)
		}

		for _, name := range uniqueNames(opts.Dishes, func() string {
			if faker.Bool() {
				return faker.Dinner()
			}
			return faker.Lunch()
		}) {
			dish := models.Dish{
				Name:        name,
				Description: faker.Sentence(faker.Number(6, 14)),
				Price:       decimal.NewFromFloat(faker.Float64Range(3, 40)).Round(2),
				DishTypeID:  dishTypes[faker.Number(0, len(dishTypes)-1)].ID,
			}
			if err := tx.Omit("Cooks", "Ingredients", "DishType").Create(&dish).Error; err != nil {
				return fmt.Errorf("seeding dish %q: %w", name, err)
			}
			if len(cooks) > 0 {
				if err := tx.Model(&dish).Association("Cooks").Append(pick(faker, cooks, 2)); err != nil {
					return err
				}
			}
			if len(ingredients) > 0 {
				if err := tx.Model(&dish).Association("Ingredients").Append(pick(faker, ingredients, 4)); err != nil {
					return err
				}
			}
		}

		log.Info("Database seeded successfully")
		return nil
	})
}

// uniqueNames draws n distinct names of at most 63 characters
func uniqueNames(n int, next func() string) []string {
	seen := make(map[string]bool, n)
	names := make([]string, 0, n)
	for attempt := 0; len(names) < n; attempt++ {
		name := next()
		if len(name) > 60 {
			name = name[:60]
		}
		if seen[name] {
			name = fmt.Sprintf("%s %d", name, attempt)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// pick returns up to max distinct elements of items
func pick[T any](faker *gofakeit.Faker, items []T, max int) []T {
	k := faker.Number(1, max)
	if k > len(items) {
		k = len(items)
	}
	shuffled := make([]T, len(items))
	copy(shuffled, items)
	faker.ShuffleAnySlice(shuffled)
	return shuffled[:k]
}
