package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// This function will Load the ENVIORNMENT VARIABLES from .env if GO_ENV variable is not set
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

type EnviornmentVariable struct {
	GO_ENV string
	PORT   int
	// Database
	DB_DRIVER    string // postgres or sqlite
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string
	SQLITE_PATH  string
	// JWT Configuration
	JWT_SECRET string
	JWT_ISSUER string
	// Redis Configuration
	REDIS_URL string
	// Razorpay
	RAZORPAY_KEY_ID     string
	RAZORPAY_KEY_SECRET string
	RAZORPAY_BASE_URL   string
	// Referral program
	REFERRAL_SIGNUP_BONUS decimal.Decimal
	APP_TIMEZONE          string
	APP_URL               string
	// Email
	EMAIL_PROVIDER   string // smtp, sendgrid or log
	EMAIL_FROM       string
	SMTP_HOST        string
	SMTP_PORT        int
	SMTP_USERNAME    string
	SMTP_PASSWORD    string
	SENDGRID_API_KEY string
	// Object storage (DigitalOcean Spaces)
	DO_SPACES_ACCESS_KEY   string
	DO_SPACES_SECRET_KEY   string
	DO_SPACES_BUCKET       string
	DO_SPACES_REGION       string
	DO_SPACES_ENDPOINT     string
	DO_SPACES_CDN_ENDPOINT string
	// HTTP
	ALLOWED_ORIGINS string
	CRON_ENABLED    bool
	// Seeding
	SEED_SUPERADMIN_EMAIL    string
	SEED_SUPERADMIN_PASSWORD string
	SEED_ADMIN_EMAIL         string
	SEED_ADMIN_PASSWORD      string
}

func Get() (*EnviornmentVariable, error) {

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080
	}

	smtpPort, err := strconv.Atoi(getEnvOrDefault("SMTP_PORT", "587"))
	if err != nil {
		smtpPort = 587
	}

	bonus := decimal.NewFromInt(50)
	if raw := os.Getenv("REFERRAL_SIGNUP_BONUS"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, err
		}
		bonus = parsed
	}

	envVariables := &EnviornmentVariable{
		GO_ENV:       os.Getenv("GO_ENV"),
		PORT:         port,
		DB_DRIVER:    strings.ToLower(getEnvOrDefault("DB_DRIVER", "postgres")),
		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      os.Getenv("DB_NAME"),
		DB_HOST:      getEnvOrDefault("DB_HOST", "localhost"),
		DB_PORT:      getEnvOrDefault("DB_PORT", "5432"),
		DB_SSL_MODE:  getEnvOrDefault("DB_SSL_MODE", "disable"),
		SQLITE_PATH:  getEnvOrDefault("SQLITE_PATH", "college_buddy.db"),
		// JWT
		JWT_SECRET: os.Getenv("JWT_SECRET"),
		JWT_ISSUER: getEnvOrDefault("JWT_ISSUER", "college-buddy-api"),
		// Redis
		REDIS_URL: getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		// Razorpay
		RAZORPAY_KEY_ID:     os.Getenv("RAZORPAY_KEY_ID"),
		RAZORPAY_KEY_SECRET: os.Getenv("RAZORPAY_KEY_SECRET"),
		RAZORPAY_BASE_URL:   getEnvOrDefault("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
		// Referral
		REFERRAL_SIGNUP_BONUS: bonus,
		APP_TIMEZONE:          getEnvOrDefault("APP_TIMEZONE", "Asia/Kolkata"),
		APP_URL:               getEnvOrDefault("APP_URL", "http://localhost:3000"),
		// Email
		EMAIL_PROVIDER:   strings.ToLower(getEnvOrDefault("EMAIL_PROVIDER", "smtp")),
		EMAIL_FROM:       getEnvOrDefault("EMAIL_FROM", "noreply@collegebuddy.in"),
		SMTP_HOST:        getEnvOrDefault("SMTP_HOST", "smtp.gmail.com"),
		SMTP_PORT:        smtpPort,
		SMTP_USERNAME:    os.Getenv("SMTP_USERNAME"),
		SMTP_PASSWORD:    os.Getenv("SMTP_PASSWORD"),
		SENDGRID_API_KEY: os.Getenv("SENDGRID_API_KEY"),
		// Spaces
		DO_SPACES_ACCESS_KEY:   os.Getenv("DO_SPACES_ACCESS_KEY"),
		DO_SPACES_SECRET_KEY:   os.Getenv("DO_SPACES_SECRET_KEY"),
		DO_SPACES_BUCKET:       os.Getenv("DO_SPACES_BUCKET"),
		DO_SPACES_REGION:       os.Getenv("DO_SPACES_REGION"),
		DO_SPACES_ENDPOINT:     os.Getenv("DO_SPACES_ENDPOINT"),
		DO_SPACES_CDN_ENDPOINT: os.Getenv("DO_SPACES_CDN_ENDPOINT"),
		// HTTP
		ALLOWED_ORIGINS: getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001"),
		CRON_ENABLED:    os.Getenv("CRON_ENABLED") != "false",
		// Seeding
		SEED_SUPERADMIN_EMAIL:    os.Getenv("SEED_SUPERADMIN_EMAIL"),
		SEED_SUPERADMIN_PASSWORD: os.Getenv("SEED_SUPERADMIN_PASSWORD"),
		SEED_ADMIN_EMAIL:         os.Getenv("SEED_ADMIN_EMAIL"),
		SEED_ADMIN_PASSWORD:      os.Getenv("SEED_ADMIN_PASSWORD"),
	}

	return envVariables, nil
}

// Location resolves APP_TIMEZONE, falling back to UTC when the zone database
// does not know it
func (e *EnviornmentVariable) Location() *time.Location {
	loc, err := time.LoadLocation(e.APP_TIMEZONE)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsProduction reports whether GO_ENV is production
func (e *EnviornmentVariable) IsProduction() bool {
	return e.GO_ENV == "production"
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
