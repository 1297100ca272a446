package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/franciscosanchezn/gin-kitchen/internal/auth"
	"github.com/franciscosanchezn/gin-kitchen/internal/config"
	"github.com/franciscosanchezn/gin-kitchen/internal/controllers"
	"github.com/franciscosanchezn/gin-kitchen/internal/database"
	"github.com/franciscosanchezn/gin-kitchen/internal/media"
	"github.com/franciscosanchezn/gin-kitchen/internal/middleware"
	"github.com/franciscosanchezn/gin-kitchen/internal/routes"
	"github.com/franciscosanchezn/gin-kitchen/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const sessionPurgeInterval = time.Hour

var (
	db            *gorm.DB
	sessions      *auth.Manager
	configuration *config.Config
)

// @title Kitchen API
// @version 1.0
// @description Kitchen service for cooks, dish types, ingredients and dishes
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Load configuration
	configuration = loadConfig()

	// Initialize loggers
	setUpLogger(configuration)

	// Initialize database connection
	db = setupDatabase(configuration)

	// Initialize services and router
	sessions = auth.NewManager(db, []byte(configuration.SessionSecret),
		time.Duration(configuration.SessionTTLHours)*time.Hour)
	router := setupRouter(configuration)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go purgeExpiredSessions(ctx)

	// Start the server
	server := &http.Server{
		Addr:              fmt.Sprintf("%v:%d", configuration.Host, configuration.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Infof("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger sets the JSON formatter and aligns every package logger with
// LOG_LEVEL, falling back to the level of the environment
func setUpLogger(conf *config.Config) {
	level := config.LevelForEnvironment(conf.Environment)
	if parsed, err := log.ParseLevel(conf.LogLevel); err == nil && os.Getenv("LOG_LEVEL") != "" {
		level = parsed
	}

	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(level)
	database.SetLogLevel(level)
	services.SetLogLevel(level)
	media.SetLogLevel(level)
	auth.SetLogLevel(level)
	middleware.SetLogLevel(level)
	controllers.SetLogLevel(level)

	if conf.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	log.Info("Loading configuration from environment variables")
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	return conf
}

// setupDatabase connects, migrates the schema and seeds an empty database
// when SEED_DATABASE is set
func setupDatabase(conf *config.Config) *gorm.DB {
	conn, err := database.InitDatabase(database.DatabaseConfig{
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
	checkPanicErr(err)
	checkPanicErr(database.Migrate(conn))

	if !conf.SeedData {
		return conn
	}
	empty, err := database.IsEmpty(conn)
	checkPanicErr(err)
	if empty {
		log.Info("Database is empty, seeding initial data")
		checkPanicErr(database.Seed(conn, database.DefaultSeedOptions))
	} else {
		log.Info("Database already seeded with initial data")
	}
	return conn
}

// setupRouter builds the services and the gin router
func setupRouter(conf *config.Config) *gin.Engine {
	storage := media.NewLocalStorage(conf.MediaRoot, conf.MediaURL)
	normalizer := media.NewJPEGNormalizer(conf.PictureMaxSize, conf.PictureQuality)

	return routes.NewRouter(routes.Dependencies{
		Sessions:           sessions,
		Cooks:              services.NewCookService(db),
		DishTypes:          services.NewDishTypeService(db),
		Ingredients:        services.NewIngredientService(db),
		Dishes:             services.NewDishService(db, storage, normalizer),
		Index:              services.NewIndexService(db),
		MediaRoot:          storage.Root(),
		MediaURL:           conf.MediaURL,
		SecureCookie:       conf.SessionCookieSecure,
		LoginRatePerMinute: conf.LoginRatePerMinute,
	})
}

// purgeExpiredSessions removes expired sessions until ctx is done
func purgeExpiredSessions(ctx context.Context) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.PurgeExpired(ctx)
			if err != nil {
				log.WithError(err).Warn("Failed to purge expired sessions")
				continue
			}
			log.WithField("purged", n).Debug("Expired sessions purged")
		}
	}
}
