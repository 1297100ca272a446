package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/franciscosanchezn/gin-kitchen/internal/config"
	"github.com/franciscosanchezn/gin-kitchen/internal/database"
	"github.com/franciscosanchezn/gin-kitchen/internal/forms"
	"github.com/franciscosanchezn/gin-kitchen/internal/models"
	"github.com/franciscosanchezn/gin-kitchen/internal/services"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// Parse command line flags
	username := flag.String("username", "admin", "Username of the superuser")
	password := flag.String("password", "", "Password of the superuser (required)")
	email := flag.String("email", "", "Email address of the superuser")
	flag.Parse()

	if *password == "" {
		log.Fatal("The -password flag is required")
	}

	_ = godotenv.Load()
	conf, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	db, err := database.InitDatabase(database.DatabaseConfig{
		Driver:   conf.DBDriver,
		Host:     conf.DBHost,
		Port:     conf.DBPort,
		User:     conf.DBUser,
		Password: conf.DBPassword,
		Name:     conf.DBName,
		SSLMode:  conf.DBSSLMode,
		URL:      conf.DatabaseURL,
		Path:     conf.DBPath,
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	cook := models.Cook{Username: strings.TrimSpace(*username), Email: strings.TrimSpace(*email)}
	if problems := forms.ValidatePassword(*password, cook); len(problems) > 0 {
		log.Fatal("Password rejected: ", strings.Join(problems, " "))
	}

	cooks := services.NewCookService(db)
	existing, err := cooks.GetCookByUsername(cook.Username)
	switch {
	case err == nil:
		promote(db, cooks, existing, *password)
		fmt.Printf("Existing cook '%s' (ID: %d) promoted to superuser\n", existing.Username, existing.ID)
	case errors.Is(err, services.ErrCookNotFound):
		created := create(cooks, cook, *password)
		fmt.Printf("Superuser '%s' created (ID: %d)\n", created.Username, created.ID)
	default:
		log.Fatal("Failed to look up cook:", err)
	}

	fmt.Println("\nSign in with:")
	fmt.Printf("curl -X POST http://%s:%d/accounts/login/ \\\n", conf.Host, conf.Port)
	fmt.Printf("  -d 'username=%s' \\\n", cook.Username)
	fmt.Println("  -d 'password=<password>'")
}

func create(cooks services.CookService, cook models.Cook, password string) models.Cook {
	cook.IsSuperuser = true
	cook.IsStaff = true
	cook.IsActive = true
	if err := cook.SetPassword(password); err != nil {
		log.Fatal("Failed to hash password:", err)
	}
	created, err := cooks.CreateCook(cook)
	if err != nil {
		log.Fatal("Failed to create superuser:", err)
	}
	return created
}

// promote grants superuser rights to an existing cook and resets the password
func promote(db *gorm.DB, cooks services.CookService, cook models.Cook, password string) {
	err := db.Model(&models.Cook{ID: cook.ID}).Updates(map[string]interface{}{
		"is_superuser": true,
		"is_staff":     true,
		"is_active":    true,
	}).Error
	if err != nil {
		log.Fatal("Failed to promote cook:", err)
	}
	if err := cooks.SetPassword(cook.ID, password); err != nil {
		log.Fatal("Failed to set password:", err)
	}
}
