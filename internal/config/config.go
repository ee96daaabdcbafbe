package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const oauthCallbackPath = "/api/calendar/oauth/callback"

// Token store backends.
const (
	TokenStoreFile     = "file"
	TokenStorePostgres = "postgres"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	PublicBaseURL      string
	LogLevel           string
	CORSAllowedOrigins []string
	MetricsEnabled     bool

	// Google Calendar
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	GoogleCalendarID   string

	// Credential persistence
	CalendarTokenStore string
	CalendarTokenFile  string
	DatabaseURL        string

	// CRM webhook
	BookingWebhookURL string
	WebhookTimeout    time.Duration

	// OAuth state storage; empty address keeps states in memory
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Per-IP limits on form submissions
	SubmitRatePerMinute int
	SubmitRateBurst     int
}

// Load reads configuration from environment variables
func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))
	port := getEnv("PORT", "5000")
	publicBaseURL := strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/")

	return &Config{
		Port:               port,
		Env:                env,
		PublicBaseURL:      publicBaseURL,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
		MetricsEnabled:     getEnvAsBool("METRICS_ENABLED", true),

		GoogleClientID:     strings.TrimSpace(getEnv("GOOGLE_CLIENT_ID", "")),
		GoogleClientSecret: strings.TrimSpace(getEnv("GOOGLE_CLIENT_SECRET", "")),
		GoogleRedirectURI:  getEnv("GOOGLE_REDIRECT_URI", defaultRedirectURI(env, port, publicBaseURL)),
		GoogleCalendarID:   getEnv("GOOGLE_CALENDAR_ID", "primary"),

		CalendarTokenStore: strings.ToLower(strings.TrimSpace(getEnv("CALENDAR_TOKEN_STORE", TokenStoreFile))),
		CalendarTokenFile:  getEnv("CALENDAR_TOKEN_FILE", defaultTokenFile(env)),
		DatabaseURL:        getEnv("DATABASE_URL", ""),

		BookingWebhookURL: getEnv("BOOKING_WEBHOOK_URL", ""),
		WebhookTimeout:    getEnvAsDuration("WEBHOOK_TIMEOUT", 10*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		SubmitRatePerMinute: getEnvAsInt("SUBMIT_RATE_PER_MINUTE", 20),
		SubmitRateBurst:     getEnvAsInt("SUBMIT_RATE_BURST", 5),
	}
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func defaultRedirectURI(env, port, publicBaseURL string) string {
	if env == "production" && publicBaseURL != "" {
		return publicBaseURL + oauthCallbackPath
	}
	return "http://localhost:" + port + oauthCallbackPath
}

func defaultTokenFile(env string) string {
	if env == "production" {
		return "/data/google-tokens.json"
	}
	return ".data/google-tokens.json"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
