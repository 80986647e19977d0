package app

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Issuer string // Optional: issuer claim for tokens (default: circle)

	Algorithm  string // Optional: JWT signing algorithm (HS256, EdDSA) (default: HS256)
	JWTSecret  string // Optional: HS256 secret; a random one is generated when empty
	JWTKeyFile string // Optional: EdDSA private key PEM, generated on first start (default: ./jwt_ed25519.pem)

	DatabaseFile string // Optional: path to SQLite database file (default: ./circle.db)
	PepperFile   string // Optional: path to file containing pepper for password hashing (default: ./pepper)

	RedisAddr     string // Optional: session cache address; an in-process cache is used when empty
	RedisPassword string
	RedisDB       int

	S3Bucket   string // Optional: profile image bucket; uploads are rejected when empty
	S3Region   string
	S3Endpoint string // Optional: S3-compatible endpoint such as MinIO

	SMTPHost     string // Optional: mail relay; mail is logged when empty
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	ExternalHeader     string   // Optional: header carrying the external issuer's user id (default: X-User-Id)
	CookieSecure       bool     // Optional: mark session cookies Secure (default: true outside dev)
	PushOriginPatterns []string // Optional: extra websocket origins, comma separated
	HandoffSecret      string   // Optional: secret the external issuer sends on handoff (default: handoff disabled)

	Env                   string        // Environment (dev, staging, prod) (default: dev)
	LogLevel              string        // Log level (debug, info, warn, error) (default: info)
	LogFormat             string        // Log format (json, text) (default: json)
	Port                  int           // HTTP server port (default: 8080)
	ShutdownGracePeriod   time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval  time.Duration // Housekeeping interval (default: 1h)
	NotificationRetention time.Duration // Read notifications older than this are removed (default: 30 days)
}

// LoadConfig reads the environment, after loading a .env file from the
// working directory when one exists.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}

	env := getEnvOrDefault("ENV", "dev")
	cfg := Config{
		Issuer:     getEnvOrDefault("CIRCLE_ISSUER", "circle"),
		Algorithm:  getEnvOrDefault("CIRCLE_JWT_ALGORITHM", "HS256"),
		JWTSecret:  os.Getenv("CIRCLE_JWT_SECRET"),
		JWTKeyFile: getEnvOrDefault("CIRCLE_JWT_KEY_FILE", "jwt_ed25519.pem"),

		DatabaseFile: getEnvOrDefault("CIRCLE_DATABASE_FILE", "circle.db"),
		PepperFile:   getEnvOrDefault("CIRCLE_PEPPER_FILE", "pepper"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvIntOrDefault("REDIS_DB", 0),

		S3Bucket:   os.Getenv("S3_BUCKET"),
		S3Region:   getEnvOrDefault("S3_REGION", "ap-southeast-2"),
		S3Endpoint: os.Getenv("S3_ENDPOINT"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnvOrDefault("SMTP_FROM", "no-reply@circle.local"),

		ExternalHeader:     getEnvOrDefault("EXTERNAL_IDENTITY_HEADER", "X-User-Id"),
		CookieSecure:       getEnvBoolOrDefault("COOKIE_SECURE", env != "dev"),
		PushOriginPatterns: getEnvListOrDefault("PUSH_ORIGIN_PATTERNS", nil),
		HandoffSecret:      os.Getenv("HANDOFF_SECRET"),

		Env:                   env,
		LogLevel:              getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:             getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                  getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:   getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval:  getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		NotificationRetention: getEnvDurationOrDefault("NOTIFICATION_RETENTION", 30*24*time.Hour),
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
