package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	AllowedOrigins    string `mapstructure:"ALLOWED_ORIGINS"`

	// Session cookie.
	SessionCookie  string        `mapstructure:"SESSION_COOKIE"`
	SessionIdleTTL time.Duration `mapstructure:"SESSION_IDLE_TTL"`
	SecureCookies  bool          `mapstructure:"SECURE_COOKIES"`

	// Cart mirror: "redis", "mongo" or "memory".
	CartStore string        `mapstructure:"CART_STORE"`
	CartKey   string        `mapstructure:"CART_KEY"`
	CartTTL   time.Duration `mapstructure:"CART_TTL"`

	// MongoDB.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCartDB   int    `mapstructure:"REDIS_CART_DB"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Backend API.
	BackendAPIURL  string        `mapstructure:"BACKEND_API_URL"`
	BackendTimeout time.Duration `mapstructure:"BACKEND_TIMEOUT"`
	CatalogTTL     time.Duration `mapstructure:"CATALOG_TTL"`

	// Identity provider: "jwt" or "firebase".
	AuthProvider            string `mapstructure:"AUTH_PROVIDER"`
	JWTSecret               string `mapstructure:"JWT_SECRET"`
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	// Stripe checkout.
	StripeKey        string `mapstructure:"STRIPE_KEY"`
	Currency         string `mapstructure:"CURRENCY"`
	CheckoutSuccess  string `mapstructure:"CHECKOUT_SUCCESS_URL"`
	CheckoutCancel   string `mapstructure:"CHECKOUT_CANCEL_URL"`
	RemindersEnabled bool   `mapstructure:"REMINDERS_ENABLED"`

	// How long before a consultation the reminder fires.
	ReminderLead time.Duration `mapstructure:"REMINDER_LEAD"`
}

var AppConfig Config

func LoadConfig() {
	// A local .env is optional; real deployments use the environment.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("SESSION_COOKIE", "cc_session")
	viper.SetDefault("SESSION_IDLE_TTL", "2h")
	viper.SetDefault("SECURE_COOKIES", false)
	viper.SetDefault("CART_STORE", "redis")
	viper.SetDefault("CART_KEY", "cart")
	viper.SetDefault("CART_TTL", "720h")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "creditcoach")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CART_DB", 0)
	viper.SetDefault("REDIS_CACHE_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("BACKEND_API_URL", "http://localhost:5000/api")
	viper.SetDefault("BACKEND_TIMEOUT", "10s")
	viper.SetDefault("CATALOG_TTL", "5m")
	viper.SetDefault("AUTH_PROVIDER", "jwt")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("CURRENCY", "usd")
	viper.SetDefault("CHECKOUT_SUCCESS_URL", "http://localhost:3000/checkout/success?session_id={CHECKOUT_SESSION_ID}")
	viper.SetDefault("CHECKOUT_CANCEL_URL", "http://localhost:3000/cart")
	viper.SetDefault("REMINDERS_ENABLED", true)
	viper.SetDefault("REMINDER_LEAD", "24h")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
