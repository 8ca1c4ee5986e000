package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	JWTSecret       string
	JWTExpiration   time.Duration
	FrontendURL     string
	MongoDBURI      string
	MongoDBDatabase string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	SMTPHost        string
	SMTPPort        int
	SMTPUser        string
	SMTPPass        string
	MailFrom        string
	WhatsAppToken   string
	WhatsAppPhoneID string
	GroqAPIKey      string
	GroqModel       string
}

func Load() *Config {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	jwtExp, _ := time.ParseDuration(getEnv("JWT_EXPIRATION", "720h"))
	smtpPort, _ := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	return &Config{
		Port:            getEnv("PORT", "5000"),
		JWTSecret:       getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTExpiration:   jwtExp,
		FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:5173"),
		MongoDBURI:      getEnv("MONGODB_URI", ""),
		MongoDBDatabase: getEnv("MONGODB_DATABASE", "salesor"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         redisDB,
		SMTPHost:        getEnv("SMTP_HOST", "smtp.ethereal.email"),
		SMTPPort:        smtpPort,
		SMTPUser:        getEnv("SMTP_USER", ""),
		SMTPPass:        getEnv("SMTP_PASS", ""),
		MailFrom:        getEnv("MAIL_FROM", "no-reply@salesor.app"),
		WhatsAppToken:   getEnv("WHATSAPP_ACCESS_TOKEN", ""),
		WhatsAppPhoneID: getEnv("WHATSAPP_PHONE_ID", ""),
		GroqAPIKey:      getEnv("GROQ_API_KEY", ""),
		GroqModel:       getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
