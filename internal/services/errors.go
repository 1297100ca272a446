package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// SetLogLevel aligns the package logger with the application level
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

var (
	ErrCookNotFound       = errors.New("cook not found")
	ErrDishTypeNotFound   = errors.New("dish type not found")
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrDishNotFound       = errors.New("dish not found")

	ErrUsernameTaken      = errors.New("a user with that username already exists")
	ErrNameTaken          = errors.New("name already exists")
	ErrUnknownDishType    = errors.New("dish type does not exist")
	ErrSentinelProtected  = errors.New("the fallback dish type cannot be deleted")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidPicture     = errors.New("invalid picture")
)

// UnknownChoiceError reports a selected related record that does not exist
type UnknownChoiceError struct {
	Field string
	ID    uint
}

func (e *UnknownChoiceError) Error() string {
	return fmt.Sprintf("%s: no record with id %d", e.Field, e.ID)
}

// notFound converts gorm.ErrRecordNotFound into the entity specific error
func notFound(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}

// uniqueViolation converts gorm.ErrDuplicatedKey into target
func uniqueViolation(err, target error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return target
	}
	return err
}

// nameTaken reports whether another row of model already uses name
func nameTaken(tx *gorm.DB, model interface{}, column, name string, exceptID uint) (bool, error) {
	var count int64
	query := tx.Model(model).Where(column+" = ?", name)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
