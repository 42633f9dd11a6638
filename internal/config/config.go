package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string

	DatabaseURL      string
	DatabaseName     string
	DBConnectTimeout time.Duration
	DBMaxPoolSize    int

	Port               string
	WebPort            string
	APIBaseURL         string
	CORSAllowedOrigins []string
	HTTPClientTimeout  time.Duration

	NATSURL         string
	NATSConnTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LocationsURL      string
	LocationsCacheTTL time.Duration

	SessionSecret string

	OTelCollectorURL string
}

// LoadConfig reads .env (when present) and the process environment.
// A missing database connection string is reported here so the process
// fails at startup instead of on the first request.
func LoadConfig() (*Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	config := &Config{
		AppEnv: getEnvString("APP_ENV", "production"),

		DatabaseURL:      getEnvString("DATABASE_URL", getEnvString("MONGO_URL", "")),
		DatabaseName:     getEnvString("DATABASE_NAME", "jobboard"),
		DBConnectTimeout: getEnvDuration("DB_CONNECT_TIMEOUT", 10*time.Second),
		DBMaxPoolSize:    getEnvInt("DB_MAX_POOL_SIZE", 10),

		Port:               getEnvString("PORT", "8080"),
		WebPort:            getEnvString("WEB_PORT", "3000"),
		APIBaseURL:         getEnvString("API_BASE_URL", "http://localhost:8080"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		HTTPClientTimeout:  getEnvDuration("HTTP_CLIENT_TIMEOUT", 15*time.Second),

		NATSURL:         getEnvString("NATS_URL", ""),
		NATSConnTimeout: getEnvDuration("NATS_CONN_TIMEOUT", 10*time.Second),

		RedisAddr:     getEnvString("REDIS_ADDR", ""),
		RedisPassword: getEnvString("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		LocationsURL:      getEnvString("LOCATIONS_URL", ""),
		LocationsCacheTTL: getEnvDuration("LOCATIONS_CACHE_TTL", 24*time.Hour),

		SessionSecret: getEnvString("SESSION_SECRET", ""),

		OTelCollectorURL: getEnvString("OTEL_COLLECTOR_URL", ""),
	}

	if strings.TrimSpace(config.DatabaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
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
