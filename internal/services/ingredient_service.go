package services

import (
	"github.com/franciscosanchezn/gin-kitchen/internal/listing"
	"github.com/franciscosanchezn/gin-kitchen/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ingredientListQuery = listing.Query{
	Ordering:      listing.Ingredients,
	PageSize:      listing.IngredientPageSize,
	SearchColumns: []clause.Column{listing.Column(listing.IngredientsTable, "name")},
}

// IngredientService provides methods to interact with the ingredients table
type IngredientService interface {
	ListIngredients(params listing.Params) (listing.Result[models.Ingredient], error)
	// AllIngredients returns every ingredient ordered by name
	AllIngredients() ([]models.Ingredient, error)
	GetIngredientByID(id uint) (models.Ingredient, error)
	CreateIngredient(ingredient models.Ingredient) (models.Ingredient, error)
	UpdateIngredient(ingredient models.Ingredient) (models.Ingredient, error)
	// DeleteIngredient removes the ingredient from every dish and deletes it
	DeleteIngredient(id uint) error
}

type ingredientService struct {
	db *gorm.DB
}

// NewIngredientService creates a new instance of IngredientService
func NewIngredientService(db *gorm.DB) IngredientService {
	return &ingredientService{db: db}
}

func (s *ingredientService) ListIngredients(params listing.Params) (listing.Result[models.Ingredient], error) {
	return listing.Find[models.Ingredient](s.db, ingredientListQuery, params, nil)
}

func (s *ingredientService) AllIngredients() ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	if err := s.db.Order("name").Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (s *ingredientService) GetIngredientByID(id uint) (models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.First(&ingredient, id).Error; err != nil {
		return models.Ingredient{}, notFound(err, ErrIngredientNotFound)
	}
	return ingredient, nil
}

func (s *ingredientService) CreateIngredient(ingredient models.Ingredient) (models.Ingredient, error) {
	taken, err := nameTaken(s.db, &models.Ingredient{}, "name", ingredient.Name, 0)
	if err != nil {
		return models.Ingredient{}, err
	}
	if taken {
		return models.Ingredient{}, ErrNameTaken
	}

	ingredient.ID = 0
	if err := s.db.Create(&ingredient).Error; err != nil {
		return models.Ingredient{}, uniqueViolation(err, ErrNameTaken)
	}
	return ingredient, nil
}

func (s *ingredientService) UpdateIngredient(ingredient models.Ingredient) (models.Ingredient, error) {
	if _, err := s.GetIngredientByID(ingredient.ID); err != nil {
		return models.Ingredient{}, err
	}

	taken, err := nameTaken(s.db, &models.Ingredient{}, "name", ingredient.Name, ingredient.ID)
	if err != nil {
		return models.Ingredient{}, err
	}
	if taken {
		return models.Ingredient{}, ErrNameTaken
	}

	if err := s.db.Save(&ingredient).Error; err != nil {
		return models.Ingredient{}, uniqueViolation(err, ErrNameTaken)
	}
	return ingredient, nil
}

func (s *ingredientService) DeleteIngredient(id uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var ingredient models.Ingredient
		if err := tx.First(&ingredient, id).Error; err != nil {
			return notFound(err, ErrIngredientNotFound)
		}
		if err := tx.Exec("DELETE FROM dish_ingredients WHERE ingredient_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&ingredient).Error
	})
	if err != nil {
		return err
	}
	log.WithField("ingredient_id", id).Info("Ingredient deleted")
	return nil
}
