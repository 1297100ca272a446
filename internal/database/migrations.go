package database

import (
	"fmt"

	"github.com/franciscosanchezn/gin-kitchen/internal/models"
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// schemaModels lists every table owned by the service, in dependency order
func schemaModels() []interface{} {
	return []interface{}{
		&models.Cook{}, &models.DishType{}, &models.Ingredient{}, &models.Dish{}, &models.Session{},
	}
}

func migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "202510010001_initial_kitchen_schema",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Cook{}, &models.DishType{}, &models.Ingredient{}, &models.Dish{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("dish_cooks", "dish_ingredients", &models.Dish{},
					&models.Ingredient{}, &models.DishType{}, &models.Cook{})
			},
		},
		{
			ID: "202510080001_add_sessions",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Session{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&models.Session{})
			},
		},
	}
}

// Migrate brings the schema up to date. A clean database gets the full schema
// in one step and every migration is marked as applied.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, migrations())

	m.InitSchema(func(tx *gorm.DB) error {
		log.Info("Clean database detected, running full schema initialization")
		return tx.AutoMigrate(schemaModels()...)
	})

	if err := m.Migrate(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Info("Database migrations completed")
	return nil
}
