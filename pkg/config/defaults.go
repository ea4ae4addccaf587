// Package config provides centralized configuration values for Octopus
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		if _, err := os.Stat(".env"); err != nil {
			return
		}
		log.Println("Loading configuration overrides from .env file...")
		// Existing environment variables take precedence.
		if err := godotenv.Load(".env"); err != nil {
			log.Printf("Warning: could not parse .env file: %v", err)
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseInt(valStr, 10, 64); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue && !isSecret(key) {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseBool(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%t (default: %t)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isSecret(key string) bool {
	return strings.Contains(key, "SECRET") || strings.Contains(key, "PASSWORD") ||
		strings.Contains(key, "API_KEY") || strings.Contains(key, "DSN")
}

var (
	// Server Configuration
	Port               string
	GinMode            string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string

	// Database
	DBDriver                 string
	DBDSN                    string
	DBAuthToken              string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	SlowQueryThreshold       time.Duration

	// Auth
	JWTSecret           string
	SessionTTL          time.Duration
	SessionCookieName   string
	SessionCookieSecure bool
	AdminEmail          string
	AdminPassword       string

	// Storage
	StorageDriver          string
	StorageBucket          string
	StoragePrefix          string
	StorageEndpoint        string
	StorageRegion          string
	StorageAccessKey       string
	StorageSecretKey       string
	StorageUseSSL          bool
	StoragePublicBaseURL   string
	StorageCaseInsensitive bool
	StorageCallTimeout     time.Duration
	StoragePageSize        int

	// Reconciliation
	DeleteRevalidationWindow time.Duration
	DeleteConcurrency        int
	UploadMaxBytes           int64

	// Optional integrations
	NatsURL        string
	ResendAPIKey   string
	AlertEmailTo   string
	AlertEmailFrom string

	// Logging
	LogDir     string
	LogLevel   string
	LogJSON    bool
	LogToFile  bool
	LogMaxSize int
	LogMaxAge  int

	// Performance tracking
	PerfMaxMarkers int
)

func init() {
	loadEnvFile()
	Load()
}

// Load reads every value from the environment, falling back to defaults.
// It runs at package init and may be called again after changing the environment.
func Load() {
	// Server Configuration
	Port = getEnvString("PORT", "8080")
	GinMode = getEnvString("GIN_MODE", "debug")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)
	ShutdownTimeout = getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second)
	CORSAllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"})

	// Database
	DBDriver = getEnvString("DB_DRIVER", "sqlite3")
	DBDSN = getEnvString("DB_DSN", "file:octopus.db?_foreign_keys=on")
	DBAuthToken = getEnvString("DB_AUTH_TOKEN", "")
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 5)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	SlowQueryThreshold = getEnvDuration("SLOW_QUERY_THRESHOLD", 250*time.Millisecond)

	// Auth
	JWTSecret = getEnvString("JWT_SECRET", "")
	SessionTTL = getEnvDuration("SESSION_TTL", 24*time.Hour)
	SessionCookieName = getEnvString("SESSION_COOKIE_NAME", "octopus_session")
	SessionCookieSecure = getEnvBool("SESSION_COOKIE_SECURE", false)
	AdminEmail = getEnvString("ADMIN_EMAIL", "")
	AdminPassword = getEnvString("ADMIN_PASSWORD", "")

	// Storage
	StorageDriver = getEnvString("STORAGE_DRIVER", "memory")
	StorageBucket = getEnvString("STORAGE_BUCKET", "media")
	StoragePrefix = getEnvString("STORAGE_PREFIX", "")
	StorageEndpoint = getEnvString("STORAGE_ENDPOINT", "")
	StorageRegion = getEnvString("STORAGE_REGION", "us-east-1")
	StorageAccessKey = getEnvString("STORAGE_ACCESS_KEY", "")
	StorageSecretKey = getEnvString("STORAGE_SECRET_KEY", "")
	StorageUseSSL = getEnvBool("STORAGE_USE_SSL", true)
	StoragePublicBaseURL = getEnvString("STORAGE_PUBLIC_BASE_URL", "")
	StorageCaseInsensitive = getEnvBool("STORAGE_CASE_INSENSITIVE", false)
	StorageCallTimeout = getEnvDuration("STORAGE_CALL_TIMEOUT", 10*time.Second)
	StoragePageSize = getEnvInt("STORAGE_PAGE_SIZE", 1000)

	// Reconciliation
	DeleteRevalidationWindow = getEnvDuration("DELETE_REVALIDATION_WINDOW", 5*time.Second)
	DeleteConcurrency = getEnvInt("DELETE_CONCURRENCY", 8)
	UploadMaxBytes = getEnvInt64("UPLOAD_MAX_BYTES", 50<<20)

	// Optional integrations
	NatsURL = getEnvString("NATS_URL", "")
	ResendAPIKey = getEnvString("RESEND_API_KEY", "")
	AlertEmailTo = getEnvString("ALERT_EMAIL_TO", "")
	AlertEmailFrom = getEnvString("ALERT_EMAIL_FROM", "Octopus <alerts@localhost>")

	// Logging
	LogDir = getEnvString("LOG_DIR", "logs")
	LogLevel = getEnvString("LOG_LEVEL", "info")
	LogJSON = getEnvBool("LOG_JSON", false)
	LogToFile = getEnvBool("LOG_TO_FILE", true)
	LogMaxSize = getEnvInt("LOG_MAX_SIZE_MB", 100)
	LogMaxAge = getEnvInt("LOG_MAX_AGE_DAYS", 28)

	PerfMaxMarkers = getEnvInt("PERF_MAX_MARKERS", 1000)
}
