package services

import (
	"github.com/franciscosanchezn/gin-kitchen/internal/models"
	"gorm.io/gorm"
)

// Counts are the totals shown on the home page
type Counts struct {
	Cooks       int64 `json:"num_cooks"`
	Dishes      int64 `json:"num_dishes"`
	DishTypes   int64 `json:"num_dish_types"`
	Ingredients int64 `json:"num_ingredients"`
}

// IndexService provides the home page counters
type IndexService interface {
	Counts() (Counts, error)
}

type indexService struct {
	db *gorm.DB
}

// NewIndexService creates a new instance of IndexService
func NewIndexService(db *gorm.DB) IndexService {
	return &indexService{db: db}
}

func (s *indexService) Counts() (Counts, error) {
	var counts Counts
	targets := []struct {
		model interface{}
		dest  *int64
	}{
		{&models.Cook{}, &counts.Cooks},
		{&models.Dish{}, &counts.Dishes},
		{&models.DishType{}, &counts.DishTypes},
		{&models.Ingredient{}, &counts.Ingredients},
	}
	for _, target := range targets {
		if err := s.db.Model(target.model).Count(target.dest).Error; err != nil {
			return Counts{}, err
		}
	}
	return counts, nil
}
