package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(LevelForEnvironment(GetEnvWithDefault("APP_ENV", "development")))
}

// LevelForEnvironment maps APP_ENV to the log level used by the service
func LevelForEnvironment(environment string) logrus.Level {
	switch environment {
	case "development":
		return logrus.DebugLevel
	case "production":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Config used for the application configuration, loading the input from environment variables
type Config struct {
	// Server Configuration
	Port        int    `json:"port"`
	Host        string `json:"host"`
	Environment string `json:"environment"`

	// Database configuration
	DBDriver    string `json:"db_driver"`
	DBPath      string `json:"db_path"`
	DBHost      string `json:"db_host"`
	DBPort      string `json:"db_port"`
	DBName      string `json:"db_name"`
	DBUser      string `json:"db_user"`
	DBPassword  string `json:"db_password"`
	DBSSLMode   string `json:"db_sslmode"`
	DatabaseURL string `json:"database_url"`
	SeedData    bool   `json:"seed_data"`

	// Logging configuration
	LogLevel string `json:"log_level"`

	// Session configuration
	SessionSecret       string `json:"session_secret"`
	SessionTTLHours     int    `json:"session_ttl_hours"`
	SessionCookieSecure bool   `json:"session_cookie_secure"`
	LoginRatePerMinute  int    `json:"login_rate_per_minute"`

	// Media configuration
	MediaRoot      string `json:"media_root"`
	MediaURL       string `json:"media_url"`
	PictureMaxSize int    `json:"picture_max_size"`
	PictureQuality int    `json:"picture_quality"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Port: %d, Host: %s, Environment: %s, DBDriver: %s, DBPath: %s, DBHost: %s, DBPort: %s, DBName: %s, DBUser: %s, DBPassword: [REDACTED], DatabaseURL: %s, LogLevel: %s, SessionSecret: [REDACTED], SessionTTLHours: %d, MediaRoot: %s, MediaURL: %s}",
		c.Port, c.Host, c.Environment, c.DBDriver, c.DBPath, c.DBHost, c.DBPort, c.DBName, c.DBUser,
		maskDatabaseURL(c.DatabaseURL), c.LogLevel, c.SessionTTLHours, c.MediaRoot, c.MediaURL)
}

// maskDatabaseURL masks password in database URL
func maskDatabaseURL(dbURL string) string {
	if dbURL == "" {
		return ""
	}

	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "[REDACTED_INVALID_URL]"
	}

	if parsed.User != nil {
		// Replace password with [REDACTED]
		parsed.User = url.UserPassword(parsed.User.Username(), "[REDACTED]")
	}

	return parsed.String()
}

// defaultSessionSecret signs sessions outside production when SESSION_SECRET is unset
const defaultSessionSecret = "secret"

// LoadConfig read the proper configuration from environment variables and returns a Config struct
// It also validates formats like DATABASE_URL, MEDIA_URL and the picture settings
// Returns an error if any environment variable is invalid
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	dbURL := GetEnvWithDefault("DATABASE_URL", "")
	if dbURL != "" {
		if _, err := url.ParseRequestURI(dbURL); err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL format: %w", err)
		}
	}

	mediaURL := GetEnvWithDefault("MEDIA_URL", "/media/")
	if !strings.HasPrefix(mediaURL, "/") || !strings.HasSuffix(mediaURL, "/") {
		return nil, fmt.Errorf("MEDIA_URL must start and end with a slash, got %q", mediaURL)
	}

	config := &Config{
		Port:        port,
		Host:        GetEnvWithDefault("APP_HOST", "localhost"),
		Environment: GetEnvWithDefault("APP_ENV", "development"),

		DBDriver:    GetEnvWithDefault("DB_DRIVER", "sqlite"),
		DBPath:      GetEnvWithDefault("DB_PATH", "kitchen.sqlite"),
		DBHost:      GetEnvWithDefault("DB_HOST", "localhost"),
		DBPort:      GetEnvWithDefault("DB_PORT", "5432"),
		DBName:      GetEnvWithDefault("DB_NAME", "kitchen"),
		DBUser:      GetEnvWithDefault("DB_USER", "kitchen"),
		DBPassword:  GetEnvWithDefault("DB_PASSWORD", "password"),
		DBSSLMode:   GetEnvWithDefault("DB_SSLMODE", "disable"),
		DatabaseURL: dbURL,
		SeedData:    GetEnvAsType("SEED_DATABASE", false),

		LogLevel: GetEnvWithDefault("LOG_LEVEL", "info"),

		SessionSecret:       GetEnvWithDefault("SESSION_SECRET", defaultSessionSecret),
		SessionTTLHours:     GetEnvAsType("SESSION_TTL_HOURS", 24*14),
		SessionCookieSecure: GetEnvAsType("SESSION_COOKIE_SECURE", false),
		LoginRatePerMinute:  GetEnvAsType("LOGIN_RATE_PER_MINUTE", 10),

		MediaRoot:      GetEnvWithDefault("MEDIA_ROOT", "media"),
		MediaURL:       mediaURL,
		PictureMaxSize: GetEnvAsType("PICTURE_MAX_SIZE", 800),
		PictureQuality: GetEnvAsType("PICTURE_QUALITY", 85),
	}

	if config.PictureMaxSize <= 0 {
		return nil, fmt.Errorf("PICTURE_MAX_SIZE must be positive, got %d", config.PictureMaxSize)
	}
	if config.PictureQuality < 1 || config.PictureQuality > 100 {
		return nil, fmt.Errorf("PICTURE_QUALITY must be between 1 and 100, got %d", config.PictureQuality)
	}
	if config.Environment == "production" && config.SessionSecret == defaultSessionSecret {
		return nil, errors.New("SESSION_SECRET must be set in production")
	}
	if config.SessionTTLHours <= 0 {
		return nil, fmt.Errorf("SESSION_TTL_HOURS must be positive, got %d", config.SessionTTLHours)
	}

	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Debugf("Environment variable %s not set, using default value: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			log.Warnf("Environment variable %s is not an integer, using default value", key)
			return defaultValue
		}
		return any(intValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			log.Warnf("Environment variable %s is not a boolean, using default value", key)
			return defaultValue
		}
		return any(boolValue).(T)
	default:
		return defaultValue // Fallback for unsupported types
	}
}
