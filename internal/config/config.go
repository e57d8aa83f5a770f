package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	SMS          SMSConfig
	Verification VerificationConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// IsProduction reports whether the service runs with production limits
func (c ServerConfig) IsProduction() bool {
	return c.Env == "production"
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode + "&prepare_threshold=0"
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	Password string
}

// JWTConfig holds JWT configuration for the staff/admin endpoints
type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

// SMSConfig holds the SMS gateway configuration
type SMSConfig struct {
	APIKey string
	Sender string
	// DryRun skips the HTTP call and logs the dispatch instead;
	// forced on when no API key is configured.
	DryRun bool
}

// VerificationConfig holds the verification policy knobs.
// Limits are relaxed outside production (see Load).
type VerificationConfig struct {
	CodeLength         int
	CodeExpiry         time.Duration
	MaxAttempts        int
	Cooldown           time.Duration
	DailyLimitPerPhone int
	DailyLimitPerIP    int
	// ExpiryGrace optionally accepts a code for this long after its
	// expiry. Off (zero) by default; enabling it weakens the expiry
	// guarantee and should be a deliberate choice.
	ExpiryGrace time.Duration
	// CleanupInterval drives the periodic expired-record sweep
	CleanupInterval time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	env := getEnv("SERVER_ENV", "development")

	// Relaxed defaults outside production so local retries and test
	// suites do not trip the abuse guards.
	cooldownDefault := 60 * time.Second
	phoneLimitDefault := 5
	ipLimitDefault := 20
	if env != "production" {
		cooldownDefault = 5 * time.Second
		phoneLimitDefault = 50
		ipLimitDefault = 200
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  env,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "randevu"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "change-this-in-production"),
			Expiry: getEnvAsDuration("JWT_EXPIRY", 15*time.Minute),
		},
		SMS: SMSConfig{
			APIKey: getEnv("SMS_API_KEY", ""),
			Sender: getEnv("SMS_SENDER", ""),
			DryRun: getEnvAsBool("SMS_DRY_RUN", env != "production"),
		},
		Verification: VerificationConfig{
			CodeLength:         getEnvAsInt("VERIFICATION_CODE_LENGTH", 6),
			CodeExpiry:         getEnvAsDuration("VERIFICATION_CODE_EXPIRY", 10*time.Minute),
			MaxAttempts:        getEnvAsInt("VERIFICATION_MAX_ATTEMPTS", 3),
			Cooldown:           getEnvAsDuration("VERIFICATION_COOLDOWN", cooldownDefault),
			DailyLimitPerPhone: getEnvAsInt("VERIFICATION_DAILY_LIMIT_PHONE", phoneLimitDefault),
			DailyLimitPerIP:    getEnvAsInt("VERIFICATION_DAILY_LIMIT_IP", ipLimitDefault),
			ExpiryGrace:        getEnvAsDuration("VERIFICATION_EXPIRY_GRACE", 0),
			CleanupInterval:    getEnvAsDuration("VERIFICATION_CLEANUP_INTERVAL", time.Hour),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
