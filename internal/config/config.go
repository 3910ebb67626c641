package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// app config, loaded once at startup and passed down explicitly
type Config struct {
	Port    string
	AppEnv  string
	Origins []string

	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	RedisPassword string

	JWTSecret     string
	JWTExpiry     time.Duration
	SignupCredits int

	AIProvider        string
	AIFallbackEnabled bool

	DeepgramAPIKey string
	DeepgramModel  string

	LiveKitURL       string
	LiveKitAPIKey    string
	LiveKitAPISecret string
	AgentAPIKey      string

	RazorpayKeyID     string
	RazorpayKeySecret string
	PendingPaymentTTL time.Duration

	GoogleClientID string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	AudioBucket     string
	AWSRegion       string
	AWSAccessKey    string
	AWSSecretKey    string
	S3Endpoint      string
	CleanupSchedule string
}

// loads configuration from the environment, reading .env first when present
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	jwtExpiry, err := ParseExpiry(getEnv("JWT_EXPIRE", "7d"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRE: %w", err)
	}

	cfg := &Config{
		Port:    getEnv("PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "production"),
		Origins: splitList(getEnv("FRONTEND_URL", "http://localhost:5173")),

		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "intervuai"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTExpiry:     jwtExpiry,
		SignupCredits: getEnvInt("SIGNUP_CREDITS", 3),

		AIProvider:        getEnv("AI_PROVIDER", "cerebras"),
		AIFallbackEnabled: getEnvBool("AI_FALLBACK_ENABLED", true),

		DeepgramAPIKey: os.Getenv("DEEPGRAM_API_KEY"),
		DeepgramModel:  getEnv("DEEPGRAM_MODEL", "nova-2"),

		LiveKitURL:       os.Getenv("LIVEKIT_URL"),
		LiveKitAPIKey:    os.Getenv("LIVEKIT_API_KEY"),
		LiveKitAPISecret: os.Getenv("LIVEKIT_API_SECRET"),
		AgentAPIKey:      os.Getenv("AGENT_API_KEY"),

		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		PendingPaymentTTL: getEnvDuration("PAYMENT_PENDING_TTL", 72*time.Hour),

		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getEnv("SMTP_PORT", "587"),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: os.Getenv("SMTP_FROM"),

		AudioBucket:     os.Getenv("AUDIO_BUCKET"),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKey:    os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretKey:    os.Getenv("AWS_SECRET_ACCESS_KEY"),
		S3Endpoint:      os.Getenv("S3_ENDPOINT"),
		CleanupSchedule: getEnv("CLEANUP_SCHEDULE", "@hourly"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch cfg.AIProvider {
	case "cerebras", "gemini":
	default:
		return errors.New("unsupported AI provider: " + cfg.AIProvider + ". Currently supported: cerebras, gemini")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) LiveKitConfigured() bool {
	return c.LiveKitURL != "" && c.LiveKitAPIKey != "" && c.LiveKitAPISecret != ""
}

func (c *Config) RazorpayConfigured() bool {
	return c.RazorpayKeyID != "" && c.RazorpayKeySecret != ""
}

func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPass != ""
}

// ParseExpiry accepts Go durations plus a day suffix ("7d", "30d").
func ParseExpiry(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasSuffix(raw, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(raw, "d"))
		if err != nil || days <= 0 {
			return 0, fmt.Errorf("bad day count %q", raw)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("expiry must be positive, got %q", raw)
	}
	return d, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := ParseExpiry(val); err == nil {
			return d
		}
	}
	return defaultVal
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
