package config

import (
	"os"
	"strconv"
)

type Config struct {
	// Database (Supabase Postgres)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Clerk (identity provider)
	ClerkJWKSURL       string
	ClerkWebhookSecret string

	// Razorpay (payment provider)
	RazorpayKeyID         string
	RazorpayKeySecret     string
	RazorpayWebhookSecret string

	// n8n (external processor)
	ProcessorWebhookURL    string
	ProcessorCallbackToken string

	// Public base URL used when self-referencing (processing callback)
	PublicBaseURL string

	// Server
	Port        string
	CORSOrigins string

	// BuildPhase short-circuits every handler to a no-op response so that
	// static build tooling never executes live side effects.
	BuildPhase bool
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "docai_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		ClerkJWKSURL:       getEnv("CLERK_JWKS_URL", ""),
		ClerkWebhookSecret: getEnv("CLERK_WEBHOOK_SECRET", ""),

		RazorpayKeyID:         getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret:     getEnv("RAZORPAY_KEY_SECRET", ""),
		RazorpayWebhookSecret: getEnv("RAZORPAY_WEBHOOK_SECRET", ""),

		ProcessorWebhookURL:    getEnv("N8N_WEBHOOK_URL", ""),
		ProcessorCallbackToken: getEnv("N8N_CALLBACK_TOKEN", ""),

		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		BuildPhase: parseBool(getEnv("BUILD_PHASE", "false")),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return b
}
