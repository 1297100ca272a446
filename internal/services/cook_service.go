package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/franciscosanchezn/gin-kitchen/internal/listing"
	"github.com/franciscosanchezn/gin-kitchen/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var cookListQuery = listing.Query{
	Ordering: listing.Cooks,
	PageSize: listing.CookPageSize,
	SearchColumns: []clause.Column{
		listing.Column(listing.CooksTable, "username"),
		listing.Column(listing.CooksTable, "first_name"),
		listing.Column(listing.CooksTable, "last_name"),
	},
}

// CookService provides methods to interact with the cooks table
type CookService interface {
	// ListCooks returns one page of cooks matching the search term
	ListCooks(params listing.Params) (listing.Result[models.Cook], error)
	// AllCooks returns every cook ordered by username
	AllCooks() ([]models.Cook, error)
	GetCookByID(id uint) (models.Cook, error)
	GetCookByUsername(username string) (models.Cook, error)
	// CreateCook inserts a cook whose password is already hashed
	CreateCook(cook models.Cook) (models.Cook, error)
	// UpdateCook saves the profile fields of an existing cook
	UpdateCook(cook models.Cook) (models.Cook, error)
	// SetPassword hashes and stores a new password
	SetPassword(id uint, raw string) error
	// DeleteCook removes the cook, their dish assignments and their sessions
	DeleteCook(id uint) error
	// Authenticate checks the credentials of an active cook and records the login
	Authenticate(username, password string) (models.Cook, error)
}

type cookService struct {
	db *gorm.DB
}

// NewCookService creates a new instance of CookService
func NewCookService(db *gorm.DB) CookService {
	return &cookService{db: db}
}

func (s *cookService) ListCooks(params listing.Params) (listing.Result[models.Cook], error) {
	return listing.Find[models.Cook](s.db, cookListQuery, params, nil)
}

func (s *cookService) AllCooks() ([]models.Cook, error) {
	var cooks []models.Cook
	if err := s.db.Order("username").Order("id").Find(&cooks).Error; err != nil {
		return nil, err
	}
	return cooks, nil
}

func (s *cookService) GetCookByID(id uint) (models.Cook, error) {
	var cook models.Cook
	if err := s.db.First(&cook, id).Error; err != nil {
		return models.Cook{}, notFound(err, ErrCookNotFound)
	}
	return cook, nil
}

func (s *cookService) GetCookByUsername(username string) (models.Cook, error) {
	var cook models.Cook
	if err := s.db.Where("username = ?", username).First(&cook).Error; err != nil {
		return models.Cook{}, notFound(err, ErrCookNotFound)
	}
	return cook, nil
}

func (s *cookService) CreateCook(cook models.Cook) (models.Cook, error) {
	taken, err := nameTaken(s.db, &models.Cook{}, "username", cook.Username, 0)
	if err != nil {
		return models.Cook{}, err
	}
	if taken {
		return models.Cook{}, ErrUsernameTaken
	}

	cook.ID = 0
	if err := s.db.Create(&cook).Error; err != nil {
		return models.Cook{}, uniqueViolation(err, ErrUsernameTaken)
	}

	log.WithFields(logrus.Fields{
		"cook_id":  cook.ID,
		"username": cook.Username,
		"is_staff": cook.IsStaff,
	}).Info("Cook created")
	return cook, nil
}

func (s *cookService) UpdateCook(cook models.Cook) (models.Cook, error) {
	if _, err := s.GetCookByID(cook.ID); err != nil {
		return models.Cook{}, err
	}

	taken, err := nameTaken(s.db, &models.Cook{}, "username", cook.Username, cook.ID)
	if err != nil {
		return models.Cook{}, err
	}
	if taken {
		return models.Cook{}, ErrUsernameTaken
	}

	fields := []string{"username", "first_name", "last_name", "email", "years_of_experience", "is_staff", "is_active", "updated_at"}
	if err := s.db.Model(&models.Cook{ID: cook.ID}).Select(fields).Updates(&cook).Error; err != nil {
		return models.Cook{}, uniqueViolation(err, ErrUsernameTaken)
	}
	return s.GetCookByID(cook.ID)
}

func (s *cookService) SetPassword(id uint, raw string) error {
	cook, err := s.GetCookByID(id)
	if err != nil {
		return err
	}
	if err := cook.SetPassword(raw); err != nil {
		return err
	}
	if err := s.db.Model(&cook).Update("password", cook.Password).Error; err != nil {
		return fmt.Errorf("storing password: %w", err)
	}
	log.WithField("cook_id", id).Info("Cook password changed")
	return nil
}

func (s *cookService) DeleteCook(id uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var cook models.Cook
		if err := tx.First(&cook, id).Error; err != nil {
			return notFound(err, ErrCookNotFound)
		}
		if err := tx.Exec("DELETE FROM dish_cooks WHERE cook_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("cook_id = ?", id).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		return tx.Delete(&cook).Error
	})
	if err != nil {
		return err
	}
	log.WithField("cook_id", id).Info("Cook deleted")
	return nil
}

func (s *cookService) Authenticate(username, password string) (models.Cook, error) {
	cook, err := s.GetCookByUsername(username)
	if errors.Is(err, ErrCookNotFound) {
		return models.Cook{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Cook{}, err
	}
	if !cook.IsActive || !cook.CheckPassword(password) {
		return models.Cook{}, ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.db.Model(&cook).Update("last_login", now).Error; err != nil {
		return models.Cook{}, err
	}
	cook.LastLogin = &now
	return cook, nil
}
