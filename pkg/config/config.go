package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	DatabaseURL      string
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration
	EncryptionKey    string

	// Redis (search result cache)
	RedisAddr     string
	RedisPassword string

	// File storage
	UploadDir     string
	PublicBaseURL string

	// PropertyFinder portal integration
	PfBaseURL           string
	PfTokenURL          string
	PfClientID          string
	PfClientSecret      string
	PfCompanyLicense    string // AES-GCM encrypted; decrypted once at startup
	PfSyncIntervalHours int
	PfSyncTimezone      string
	PfSyncWorkers       int

	// Google Cloud (Pub/Sub listing events)
	GoogleProjectID   string
	GooglePubSubTopic string
	GoogleCredentials string

	// Firebase (push notifications)
	FirebaseCredentials string

	// AI description generation
	AIProvider    string
	GeminiApiKey  string
	OllamaBaseURL string
	OllamaModel   string

	// Chroma (similar-property search)
	ChromaAPIKey   string
	ChromaTenant   string
	ChromaDatabase string

	// Lead inbox (IMAP)
	LeadImapServer   string
	LeadImapPort     int
	LeadImapUser     string
	LeadImapPassword string // AES-GCM encrypted
	LeadPollMinutes  int
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	accessExpiry := 15 * time.Minute
	if exp := os.Getenv("JWT_ACCESS_EXPIRY"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			accessExpiry = parsed
		}
	}

	refreshExpiry := 168 * time.Hour // 7 days
	if exp := os.Getenv("JWT_REFRESH_EXPIRY"); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			refreshExpiry = parsed
		}
	}

	return &Config{
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=propdesk port=5432 sslmode=disable"),
		JWTSecret:        getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTAccessExpiry:  accessExpiry,
		JWTRefreshExpiry: refreshExpiry,
		EncryptionKey:    getEnv("ENCRYPTION_KEY", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),

		PfBaseURL:           getEnv("PF_BASE_URL", "https://atlas.propertyfinder.com/v1"),
		PfTokenURL:          getEnv("PF_TOKEN_URL", "https://auth.propertyfinder.com/oauth/token"),
		PfClientID:          getEnv("PF_CLIENT_ID", ""),
		PfClientSecret:      getEnv("PF_CLIENT_SECRET", ""),
		PfCompanyLicense:    getEnv("PF_COMPANY_LICENSE", ""),
		PfSyncIntervalHours: getEnvInt("PF_SYNC_INTERVAL_HOURS", 6),
		PfSyncTimezone:      getEnv("PF_SYNC_TIMEZONE", "Asia/Dubai"),
		PfSyncWorkers:       getEnvInt("PF_SYNC_WORKERS", 3),

		GoogleProjectID:   getEnv("GOOGLE_PROJECT_ID", ""),
		GooglePubSubTopic: getEnv("GOOGLE_PUBSUB_TOPIC", "pf-listing-events"),
		GoogleCredentials: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),

		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),

		AIProvider:    getEnv("AI_PROVIDER", "auto"),
		GeminiApiKey:  getEnv("GEMINI_API_KEY", ""),
		OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:   getEnv("OLLAMA_MODEL", "llama3"),

		ChromaAPIKey:   getEnv("CHROMA_API_KEY", ""),
		ChromaTenant:   getEnv("CHROMA_TENANT", ""),
		ChromaDatabase: getEnv("CHROMA_DATABASE", ""),

		LeadImapServer:   getEnv("LEAD_IMAP_SERVER", ""),
		LeadImapPort:     getEnvInt("LEAD_IMAP_PORT", 993),
		LeadImapUser:     getEnv("LEAD_IMAP_USER", ""),
		LeadImapPassword: getEnv("LEAD_IMAP_PASSWORD", ""),
		LeadPollMinutes:  getEnvInt("LEAD_POLL_MINUTES", 5),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
