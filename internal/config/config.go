package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Postgres (DBDriver=sqlite with a file path in DBName is accepted for dev)
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       string

	// WhatsApp Cloud API
	VerifyToken               string
	WhatsAppToken             string
	WhatsAppAppSecret         string
	PhoneNumberID             string
	DisplayNumber             string
	WhatsAppBusinessAccountID string

	// Zoho CRM
	ZohoClientID     string
	ZohoClientSecret string
	ZohoRefreshToken string
	ZohoTokenURL     string
	ZohoAPIBase      string

	// Razorpay
	RazorpayKeyID         string
	RazorpaySecret        string
	RazorpayWebhookSecret string
	RazorpayBaseURL       string

	// Shopify Admin
	ShopifyShop       string
	ShopifyAdminToken string

	// Zenoti
	ZenotiAPIKey  string
	ZenotiBaseURL string

	// OpenAI (validator first pass)
	OpenAIAPIKey string
	OpenAIModel  string

	// Dashboard auth
	JWTSecret string
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Error loading .env file")
	}

	return &Config{
		Port: getEnv("PORT", "8080"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "clinic_engage"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisURL:      getEnv("REDIS_URL", ""),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnv("REDIS_DB", "0"),

		VerifyToken:               getEnv("VERIFY_TOKEN", ""),
		WhatsAppToken:             getEnv("WHATSAPP_TOKEN", ""),
		WhatsAppAppSecret:         getEnv("WHATSAPP_APP_SECRET", ""),
		PhoneNumberID:             getEnv("WHATSAPP_PHONE_ID", ""),
		DisplayNumber:             getEnv("WHATSAPP_DISPLAY_NUMBER", ""),
		WhatsAppBusinessAccountID: getEnv("WABA_ID", ""),

		ZohoClientID:     getEnv("ZOHO_CLIENT_ID", ""),
		ZohoClientSecret: getEnv("ZOHO_CLIENT_SECRET", ""),
		ZohoRefreshToken: getEnv("ZOHO_REFRESH_TOKEN", ""),
		ZohoTokenURL:     getEnv("ZOHO_TOKEN_URL", "https://accounts.zoho.in/oauth/v2/token"),
		ZohoAPIBase:      getEnv("ZOHO_API_BASE", "https://www.zohoapis.in/crm/v2.1"),

		RazorpayKeyID:         getEnv("RAZORPAY_KEY_ID", ""),
		RazorpaySecret:        getEnv("RAZORPAY_SECRET", ""),
		RazorpayWebhookSecret: getEnv("RAZORPAY_WEBHOOK_SECRET", ""),
		RazorpayBaseURL:       getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com/v1"),

		ShopifyShop:       getEnv("SHOPIFY_SHOP", ""),
		ShopifyAdminToken: getEnv("SHOPIFY_ADMIN_TOKEN", ""),

		ZenotiAPIKey:  getEnv("ZENOTI_API_KEY", ""),
		ZenotiBaseURL: getEnv("ZENOTI_BASE_URL", "https://api.zenoti.com/v1"),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		JWTSecret: getEnv("JWT_SECRET", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
