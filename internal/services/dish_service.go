package services

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/franciscosanchezn/gin-kitchen/internal/listing"
	"github.com/franciscosanchezn/gin-kitchen/internal/media"
	"github.com/franciscosanchezn/gin-kitchen/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var dishListQuery = listing.Query{
	Ordering:      listing.Dishes,
	PageSize:      listing.DishPageSize,
	SearchColumns: []clause.Column{listing.Column(listing.DishesTable, "name")},
}

// PictureChange describes what a save does to the dish picture.
// Without an upload and without Clear the current picture is kept.
type PictureChange struct {
	Upload *media.Upload
	Clear  bool
}

// DishService provides methods to interact with the dishes table
type DishService interface {
	// ListDishes returns one page of dishes, with their dish type, matching the search term
	ListDishes(params listing.Params) (listing.Result[models.Dish], error)
	// ListDishesByCook returns the dishes a cook is assigned to ordered by name
	ListDishesByCook(cookID uint) ([]models.Dish, error)
	// GetDishByID returns the dish with its dish type, cooks and ingredients
	GetDishByID(id uint) (models.Dish, error)
	// CreateDish inserts a dish. Cooks and ingredients are referenced by ID.
	CreateDish(dish models.Dish, picture PictureChange) (models.Dish, error)
	// UpdateDish saves an existing dish and replaces its cooks and ingredients
	UpdateDish(dish models.Dish, picture PictureChange) (models.Dish, error)
	DeleteDish(id uint) error
}

type dishService struct {
	db         *gorm.DB
	storage    media.Storage
	normalizer media.Normalizer
}

// NewDishService creates a new instance of DishService. Pictures are
// normalized by normalizer and kept in storage.
func NewDishService(db *gorm.DB, storage media.Storage, normalizer media.Normalizer) DishService {
	return &dishService{db: db, storage: storage, normalizer: normalizer}
}

func (s *dishService) ListDishes(params listing.Params) (listing.Result[models.Dish], error) {
	result, err := listing.Find[models.Dish](s.db, dishListQuery, params, func(db *gorm.DB) *gorm.DB {
		return db.Joins("DishType")
	})
	if err != nil {
		return result, err
	}
	for i := range result.Items {
		s.withPictureURL(&result.Items[i])
	}
	return result, nil
}

func (s *dishService) ListDishesByCook(cookID uint) ([]models.Dish, error) {
	var dishes []models.Dish
	err := s.db.Joins("DishType").
		Joins("JOIN dish_cooks ON dish_cooks.dish_id = dishes.id AND dish_cooks.cook_id = ?", cookID).
		Order("dishes.name").
		Find(&dishes).Error
	if err != nil {
		return nil, err
	}
	for i := range dishes {
		s.withPictureURL(&dishes[i])
	}
	return dishes, nil
}

func (s *dishService) GetDishByID(id uint) (models.Dish, error) {
	var dish models.Dish
	err := s.db.Preload("DishType").
		Preload("Cooks", func(db *gorm.DB) *gorm.DB { return db.Order("cooks.username") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("ingredients.name") }).
		First(&dish, id).Error
	if err != nil {
		return models.Dish{}, notFound(err, ErrDishNotFound)
	}
	s.withPictureURL(&dish)
	return dish, nil
}

func (s *dishService) CreateDish(dish models.Dish, picture PictureChange) (models.Dish, error) {
	dish.ID = 0
	return s.saveDish(nil, dish, picture)
}

func (s *dishService) UpdateDish(dish models.Dish, picture PictureChange) (models.Dish, error) {
	persisted, err := s.GetDishByID(dish.ID)
	if err != nil {
		return models.Dish{}, err
	}
	return s.saveDish(&persisted, dish, picture)
}

func (s *dishService) DeleteDish(id uint) error {
	var picture string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var dish models.Dish
		if err := tx.First(&dish, id).Error; err != nil {
			return notFound(err, ErrDishNotFound)
		}
		picture = dish.Picture

		if err := tx.Model(&dish).Association("Cooks").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&dish).Association("Ingredients").Clear(); err != nil {
			return err
		}
		return tx.Delete(&dish).Error
	})
	if err != nil {
		return err
	}

	s.removePicture(picture)
	log.WithField("dish_id", id).Info("Dish deleted")
	return nil
}

// saveDish stores the picture first and then the record. A picture
// written for a failed save is removed again, as is a picture the save
// replaced.
func (s *dishService) saveDish(persisted *models.Dish, dish models.Dish, change PictureChange) (models.Dish, error) {
	dish.Picture = ""
	if persisted != nil {
		dish.Picture = persisted.Picture
		dish.CreatedAt = persisted.CreatedAt
	}

	var written string
	switch {
	case change.Upload != nil:
		name, stored, err := s.storePicture(persisted, change.Upload)
		if err != nil {
			return models.Dish{}, err
		}
		if stored {
			written = name
		}
		dish.Picture = name
	case change.Clear:
		dish.Picture = ""
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return saveDishRecord(tx, &dish)
	})
	if err != nil {
		s.removePicture(written)
		return models.Dish{}, err
	}

	if persisted != nil && persisted.Picture != dish.Picture {
		s.removePicture(persisted.Picture)
	}

	log.WithFields(logrus.Fields{
		"dish_id":         dish.ID,
		"name":            dish.Name,
		"picture":         dish.Picture,
		"picture_changed": written != "",
	}).Info("Dish saved")
	return s.GetDishByID(dish.ID)
}

// PictureChanged reports whether incoming differs from the stored picture.
// A dish that was never saved always counts as changed.
func PictureChanged(persisted *models.Dish, incoming string) bool {
	return persisted == nil || persisted.Picture != incoming
}

// storePicture normalizes and saves the upload when it differs from the
// stored picture. It returns the picture name and whether a file was written.
func (s *dishService) storePicture(persisted *models.Dish, upload *media.Upload) (string, bool, error) {
	incoming := media.ValidName(upload.Name)
	if incoming == "" {
		return "", false, fmt.Errorf("%w: empty file name", ErrInvalidPicture)
	}
	if !PictureChanged(persisted, incoming) {
		return persisted.Picture, false, nil
	}

	data, err := s.normalizer.Normalize(upload.Content)
	if err != nil {
		if errors.Is(err, media.ErrInvalidImage) {
			return "", false, fmt.Errorf("%w: %v", ErrInvalidPicture, err)
		}
		return "", false, err
	}

	name, err := s.storage.Save(incoming, bytes.NewReader(data))
	if err != nil {
		return "", false, fmt.Errorf("storing picture: %w", err)
	}
	return name, true, nil
}

func (s *dishService) removePicture(name string) {
	if name == "" {
		return
	}
	if err := s.storage.Delete(name); err != nil {
		log.WithError(err).WithField("picture", name).Warn("Failed to remove dish picture")
	}
}

func (s *dishService) withPictureURL(dish *models.Dish) {
	dish.PictureURL = s.storage.URL(dish.Picture)
}

// saveDishRecord validates the references of dish and writes it with its
// cooks and ingredients
func saveDishRecord(tx *gorm.DB, dish *models.Dish) error {
	taken, err := nameTaken(tx, &models.Dish{}, "name", dish.Name, dish.ID)
	if err != nil {
		return err
	}
	if taken {
		return ErrNameTaken
	}

	var dishTypes int64
	if err := tx.Model(&models.DishType{}).Where("id = ?", dish.DishTypeID).Count(&dishTypes).Error; err != nil {
		return err
	}
	if dishTypes == 0 {
		return ErrUnknownDishType
	}

	cookIDs := make([]uint, 0, len(dish.Cooks))
	for _, cook := range dish.Cooks {
		cookIDs = append(cookIDs, cook.ID)
	}
	cooks, err := resolveChoices[models.Cook](tx, "cooks", cookIDs, func(c models.Cook) uint { return c.ID })
	if err != nil {
		return err
	}

	ingredientIDs := make([]uint, 0, len(dish.Ingredients))
	for _, ingredient := range dish.Ingredients {
		ingredientIDs = append(ingredientIDs, ingredient.ID)
	}
	ingredients, err := resolveChoices[models.Ingredient](tx, "ingredients", ingredientIDs,
		func(i models.Ingredient) uint { return i.ID })
	if err != nil {
		return err
	}

	dish.DishType = models.DishType{}
	if dish.ID == 0 {
		err = tx.Omit(clause.Associations).Create(dish).Error
	} else {
		err = tx.Omit(clause.Associations).Save(dish).Error
	}
	if err != nil {
		return uniqueViolation(err, ErrNameTaken)
	}

	if err := replaceAssociation(tx.Model(dish).Association("Cooks"), cooks, len(cooks)); err != nil {
		return err
	}
	return replaceAssociation(tx.Model(dish).Association("Ingredients"), ingredients, len(ingredients))
}

func replaceAssociation(association *gorm.Association, values interface{}, n int) error {
	if n == 0 {
		return association.Clear()
	}
	return association.Replace(values)
}

// resolveChoices loads the records with the given IDs, failing with an
// UnknownChoiceError for the first ID that does not exist
func resolveChoices[T any](tx *gorm.DB, field string, ids []uint, idOf func(T) uint) ([]T, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var records []T
	if err := tx.Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, err
	}

	found := make(map[uint]bool, len(records))
	for _, record := range records {
		found[idOf(record)] = true
	}
	for _, id := range ids {
		if !found[id] {
			return nil, &UnknownChoiceError{Field: field, ID: id}
		}
	}
	return records, nil
}
