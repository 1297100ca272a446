package services

import (
	"github.com/franciscosanchezn/gin-kitchen/internal/listing"
	"github.com/franciscosanchezn/gin-kitchen/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var dishTypeListQuery = listing.Query{
	Ordering:      listing.DishTypes,
	PageSize:      listing.DishTypePageSize,
	SearchColumns: []clause.Column{listing.Column(listing.DishTypesTable, "name")},
}

// DishTypeService provides methods to interact with the dish_types table
type DishTypeService interface {
	ListDishTypes(params listing.Params) (listing.Result[models.DishType], error)
	// AllDishTypes returns every dish type ordered by name
	AllDishTypes() ([]models.DishType, error)
	GetDishTypeByID(id uint) (models.DishType, error)
	CreateDishType(dishType models.DishType) (models.DishType, error)
	UpdateDishType(dishType models.DishType) (models.DishType, error)
	// DeleteDishType moves the dishes of the type to the "None" type and
	// removes it. The "None" type itself cannot be deleted.
	DeleteDishType(id uint) error
}

type dishTypeService struct {
	db *gorm.DB
}

// NewDishTypeService creates a new instance of DishTypeService
func NewDishTypeService(db *gorm.DB) DishTypeService {
	return &dishTypeService{db: db}
}

func (s *dishTypeService) ListDishTypes(params listing.Params) (listing.Result[models.DishType], error) {
	return listing.Find[models.DishType](s.db, dishTypeListQuery, params, nil)
}

func (s *dishTypeService) AllDishTypes() ([]models.DishType, error) {
	var dishTypes []models.DishType
	if err := s.db.Order("name").Find(&dishTypes).Error; err != nil {
		return nil, err
	}
	return dishTypes, nil
}

func (s *dishTypeService) GetDishTypeByID(id uint) (models.DishType, error) {
	var dishType models.DishType
	if err := s.db.First(&dishType, id).Error; err != nil {
		return models.DishType{}, notFound(err, ErrDishTypeNotFound)
	}
	return dishType, nil
}

func (s *dishTypeService) CreateDishType(dishType models.DishType) (models.DishType, error) {
	taken, err := nameTaken(s.db, &models.DishType{}, "name", dishType.Name, 0)
	if err != nil {
		return models.DishType{}, err
	}
	if taken {
		return models.DishType{}, ErrNameTaken
	}

	dishType.ID = 0
	if err := s.db.Create(&dishType).Error; err != nil {
		return models.DishType{}, uniqueViolation(err, ErrNameTaken)
	}
	return dishType, nil
}

func (s *dishTypeService) UpdateDishType(dishType models.DishType) (models.DishType, error) {
	if _, err := s.GetDishTypeByID(dishType.ID); err != nil {
		return models.DishType{}, err
	}

	taken, err := nameTaken(s.db, &models.DishType{}, "name", dishType.Name, dishType.ID)
	if err != nil {
		return models.DishType{}, err
	}
	if taken {
		return models.DishType{}, ErrNameTaken
	}

	if err := s.db.Save(&dishType).Error; err != nil {
		return models.DishType{}, uniqueViolation(err, ErrNameTaken)
	}
	return dishType, nil
}

func (s *dishTypeService) DeleteDishType(id uint) error {
	var moved int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var dishType models.DishType
		if err := tx.First(&dishType, id).Error; err != nil {
			return notFound(err, ErrDishTypeNotFound)
		}
		if dishType.IsSentinel() {
			return ErrSentinelProtected
		}

		if err := tx.Model(&models.Dish{}).Where("dish_type_id = ?", id).Count(&moved).Error; err != nil {
			return err
		}
		if moved > 0 {
			sentinel, err := sentinelDishType(tx)
			if err != nil {
				return err
			}
			err = tx.Model(&models.Dish{}).Where("dish_type_id = ?", id).Update("dish_type_id", sentinel.ID).Error
			if err != nil {
				return err
			}
		}
		return tx.Delete(&dishType).Error
	})
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"dish_type_id": id,
		"dishes_moved": moved,
	}).Info("Dish type deleted")
	return nil
}

// sentinelDishType returns the "None" dish type, creating it on first use
func sentinelDishType(tx *gorm.DB) (models.DishType, error) {
	sentinel := models.DishType{Name: models.SentinelDishTypeName}
	if err := tx.Where(models.DishType{Name: models.SentinelDishTypeName}).FirstOrCreate(&sentinel).Error; err != nil {
		return models.DishType{}, err
	}
	return sentinel, nil
}
