package common

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

type SMTP struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

type Twitter struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type Config struct {
	Port          string
	SqliteDB      string
	SessionSecret string
	Domain        string
	BlogTitle     string
	CacheDir      string
	CacheMaxAge   time.Duration
	SMTP          SMTP
	Twitter       Twitter
	BcryptCost    int
	LogLevel      string
	Debug         bool
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return duration
}

func LoadSMTP() SMTP {
	return SMTP{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     getEnv("SMTP_PORT", "25"),
		User:     getEnv("SMTP_USER", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "noreply@localhost"),
	}
}

func LoadTwitter() Twitter {
	return Twitter{
		ClientID:     getEnv("TWITTER_CLIENT_ID", ""),
		ClientSecret: getEnv("TWITTER_CLIENT_SECRET", ""),
		RedirectURL:  getEnv("TWITTER_REDIRECT_URL", "http://localhost:8080/account/twitter/callback"),
	}
}

// LoadConfig reads .env when present and falls back to the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		SqliteDB:      getEnv("SQLITE_DB", "presslog.db"),
		SessionSecret: getEnv("SESSION_SECRET", ""),
		Domain:        getEnv("DOMAIN", "http://localhost:8080"),
		BlogTitle:     getEnv("BLOG_TITLE", "presslog"),
		CacheDir:      getEnv("CACHE_DIR", ""),
		CacheMaxAge:   parseDuration(getEnv("CACHE_MAX_AGE", "10m"), 10*time.Minute),
		SMTP:          LoadSMTP(),
		Twitter:       LoadTwitter(),
		BcryptCost:    getEnvAsInt("BCRYPT_COST", bcrypt.DefaultCost),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Debug:         getEnvBool("DEBUG", false),
	}
}
