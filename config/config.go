package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds service configuration resolved from the environment.
// Load godotenv in main before calling FromEnv.
type Config struct {
	Port        string
	DatabaseURL string
	LogMode     string

	HTTPTimeout time.Duration
	TopicSource string // "google" | "bing" | "" (try both in order)

	RedisAddr string
	RedisPass string
	RedisDB   int

	CohereAPIKey string
	EmbedModel   string

	ChromaHost       string
	ChromaPort       int
	ChromaCollection string

	S3Bucket       string
	S3Region       string
	S3Profile      string
	S3Prefix       string
	S3UsePathStyle bool

	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string
}

// FromEnv builds a Config from environment variables with defaults.
func FromEnv() Config {
	return Config{
		Port:        GetEnvOrDefault("PORT", "8080"),
		DatabaseURL: GetEnvOrDefault("DATABASE_URL", ""),
		LogMode:     GetEnvOrDefault("LOG_MODE", "dev"),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT_SECONDS", DefaultHTTPTimeout),
		TopicSource: strings.ToLower(strings.TrimSpace(os.Getenv("TOPIC_SOURCE"))),

		RedisAddr: GetEnvOrDefault("REDIS_ADDR", ""),
		RedisPass: os.Getenv("REDIS_PASS"),
		RedisDB:   getEnvInt("REDIS_DB", 0),

		CohereAPIKey: os.Getenv("COHERE_API_KEY"),
		EmbedModel:   GetEnvOrDefault("EMBED_MODEL", ""),

		ChromaHost:       GetEnvOrDefault("CHROMA_HOST", ""),
		ChromaPort:       getEnvInt("CHROMA_PORT", 8000),
		ChromaCollection: GetEnvOrDefault("CHROMA_COLLECTION", "newsgraph_docs"),

		S3Bucket:       strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3Region:       strings.TrimSpace(os.Getenv("S3_REGION")),
		S3Profile:      strings.TrimSpace(os.Getenv("S3_PROFILE")),
		S3Prefix:       strings.TrimSpace(os.Getenv("S3_PREFIX")),
		S3UsePathStyle: strings.EqualFold(strings.TrimSpace(os.Getenv("S3_USE_PATH_STYLE")), "true"),

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   GetEnvOrDefault("KAFKA_TOPIC", "ingest.requests"),
		KafkaGroupID: GetEnvOrDefault("KAFKA_GROUP_ID", "newsgraph"),
	}
}

// GetEnvOrDefault returns the env value or a fallback when unset/empty.
func GetEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
