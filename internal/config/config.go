package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server настройки
	Port        string
	Host        string
	Environment string

	// MongoDB настройки
	MongoURI     string
	DatabaseName string
	MongoTimeout int

	// JWT настройки
	JWTSecret     string
	JWTExpiration int

	// CORS
	AllowedOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Логирование
	LogFile string
}

func Load() *Config {
	// Загружаем переменные из .env файла
	if err := godotenv.Load(); err != nil {
		log.Printf("Не удалось загрузить .env файл: %v", err)
	}

	config := &Config{
		Port:              getEnv("PORT", "8080"),
		Host:              getEnv("HOST", "0.0.0.0"),
		Environment:       getEnv("ENV", "development"),
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DatabaseName:      getEnv("DATABASE_NAME", "elearning"),
		MongoTimeout:      getEnvAsInt("MONGO_TIMEOUT", 10),
		JWTSecret:         getEnv("JWT_SECRET", "your-secret-key"),
		JWTExpiration:     getEnvAsInt("JWT_EXPIRATION", 24), // часы
		AllowedOrigins:    []string{getEnv("ALLOWED_ORIGIN", "http://localhost:3000")},
		RateLimitEnabled:  getEnvAsBool("RATE_LIMIT_ENABLED", false),
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(getEnvAsInt("RATE_LIMIT_WINDOW", 60)) * time.Second,
		LogFile:           getEnv("LOG_FILE", ""),
	}

	return config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
