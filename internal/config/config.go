package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	MongoURI string
	DBName   string
	RedisURI string

	JWTSecret            string
	CheckoutCookieSecret string

	RazorpayKeyID     string
	RazorpayKeySecret string
	Currency          string

	CheckoutLockTTL   time.Duration
	IdempotencyTTL    time.Duration
	GatewayTimeout    time.Duration
	ReconcileAfter    time.Duration
	ReconcileInterval time.Duration
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		MongoURI:             getEnvOrDefault("MONGO_URI", ""),
		DBName:               getEnvOrDefault("DB_NAME", "fastkart"),
		RedisURI:             getEnvOrDefault("REDIS_URI", "redis://localhost:6379/0"),
		JWTSecret:            getEnvOrDefault("JWT_SECRET", ""),
		CheckoutCookieSecret: getEnvOrDefault("CHECKOUT_COOKIE_SECRET", ""),
		RazorpayKeyID:        getEnvOrDefault("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret:    getEnvOrDefault("RAZORPAY_KEY_SECRET", ""),
		Currency:             getEnvOrDefault("CURRENCY", "INR"),
		CheckoutLockTTL:      getDurationEnv("CHECKOUT_LOCK_TTL", 30, time.Second),
		IdempotencyTTL:       getDurationEnv("IDEMPOTENCY_TTL", 24, time.Hour),
		GatewayTimeout:       getDurationEnv("GATEWAY_TIMEOUT", 10, time.Second),
		ReconcileAfter:       getDurationEnv("RECONCILE_AFTER", 15, time.Minute),
		ReconcileInterval:    getDurationEnv("RECONCILE_INTERVAL", 5, time.Minute),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
