package global

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"
)

func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func GetDefaultTimer() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

func GetMongoURI() string {
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		log.Fatal("MONGODB_URI is not set in environment variables")
		os.Exit(1)
	}
	return mongoURI
}

func GetDatabaseName() string {
	dbName := GetEnvOrDefault("MONGODB_DATABASE", "duka_pos")
	return dbName
}

func GetJWTSecret() string {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set in environment variables")
		os.Exit(1)
	}
	return secret
}

// GetCurrencySymbol returns the symbol shown on receipts and reports.
func GetCurrencySymbol() string {
	return GetEnvOrDefault("CURRENCY_SYMBOL", "KSh")
}

// GetDefaultTaxRate returns the fallback tax percentage for products that
// carry no rate of their own.
func GetDefaultTaxRate() float64 {
	return GetEnvFloatOrDefault("DEFAULT_TAX_RATE", 0)
}

// GetLoyaltyDivisor returns how many currency units earn one loyalty point.
func GetLoyaltyDivisor() float64 {
	return GetEnvFloatOrDefault("LOYALTY_POINTS_PER_CURRENCY", 100)
}

// GetDefaultLocationID returns the location a new cart session is attributed
// to before the staff member picks one.
func GetDefaultLocationID() string {
	return GetEnvOrDefault("DEFAULT_LOCATION_ID", "default-location-id")
}
