package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service configuration loaded from environment variables.
// Empty connection settings disable the matching optional component.
type Config struct {
	Port            string
	PostgresDSN     string
	MongoURI        string
	MongoDB         string
	RedisAddr       string
	RedisPassword   string
	CacheTTL        time.Duration
	MinioEndpoint   string
	MinioAccessKey  string
	MinioSecretKey  string
	MinioBucket     string
	MinioUseSSL     bool
	RabbitMQURL     string
	RabbitExchange  string
	LogLevel        string
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

func Load() *Config {
	return &Config{
		Port:            getenv("PORT", "8080"),
		PostgresDSN:     getenv("POSTGRES_DSN", ""),
		MongoURI:        getenv("MONGO_URI", ""),
		MongoDB:         getenv("MONGO_DB", "wayfare"),
		RedisAddr:       getenv("REDIS_ADDR", ""),
		RedisPassword:   getenv("REDIS_PASSWORD", ""),
		CacheTTL:        getenvDuration("CACHE_TTL", 5*time.Minute),
		MinioEndpoint:   getenv("MINIO_ENDPOINT", ""),
		MinioAccessKey:  getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:  getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:     getenv("MINIO_BUCKET", "wayfare-snapshots"),
		MinioUseSSL:     getenv("MINIO_USE_SSL", "false") == "true",
		RabbitMQURL:     getenv("RABBITMQ_URL", ""),
		RabbitExchange:  getenv("RABBITMQ_EXCHANGE", "wayfare.changes"),
		LogLevel:        getenv("LOG_LEVEL", "INFO"),
		CORSOrigins:     splitList(getenv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		ShutdownTimeout: getenvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// getenvDuration accepts Go durations ("30s") or plain seconds ("30").
func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := getenv(key, "")
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
