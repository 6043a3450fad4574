package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration. Built from environment
// variables so main stays lean.
type Config struct {
	Addr          string
	DatabaseURL   string
	RedisURL      string
	JWTSigningKey string

	KafkaBrokers       []string
	KafkaShipmentTopic string

	// Notary is the external provenance bridge. Anchoring is advisory; a
	// blank URL disables it entirely.
	NotaryURL     string
	NotaryNetwork string

	AnchorPollInterval time.Duration
	AnchorCallTimeout  time.Duration
	AnchorMaxAttempts  int

	StatsCacheTTL time.Duration

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string
}

// FromEnv builds a Config from environment variables, with development
// defaults for everything but credentials.
func FromEnv() Config {
	cfg := Config{
		Addr:               getEnv("PHARMAOPS_ADDR", ":8080"),
		DatabaseURL:        getEnv("PHARMAOPS_DATABASE_URL", ""),
		RedisURL:           getEnv("PHARMAOPS_REDIS_URL", ""),
		JWTSigningKey:      getEnv("PHARMAOPS_JWT_SIGNING_KEY", "dev-secret-change-in-production"),
		KafkaShipmentTopic: getEnv("PHARMAOPS_KAFKA_SHIPMENT_TOPIC", "shipments.events"),
		NotaryURL:          getEnv("PHARMAOPS_NOTARY_URL", ""),
		NotaryNetwork:      getEnv("PHARMAOPS_NOTARY_NETWORK", "besu-local"),
		AnchorPollInterval: getDuration("PHARMAOPS_ANCHOR_POLL_INTERVAL", 5*time.Second),
		AnchorCallTimeout:  getDuration("PHARMAOPS_ANCHOR_CALL_TIMEOUT", 10*time.Second),
		AnchorMaxAttempts:  getInt("PHARMAOPS_ANCHOR_MAX_ATTEMPTS", 5),
		StatsCacheTTL:      getDuration("PHARMAOPS_STATS_CACHE_TTL", time.Minute),
		SMTPHost:           getEnv("PHARMAOPS_SMTP_HOST", ""),
		SMTPPort:           getInt("PHARMAOPS_SMTP_PORT", 587),
		SMTPUser:           getEnv("PHARMAOPS_SMTP_USER", ""),
		SMTPPass:           getEnv("PHARMAOPS_SMTP_PASS", ""),
		MailFrom:           getEnv("PHARMAOPS_MAIL_FROM", "no-reply@pharmaops.local"),
	}

	if brokers := getEnv("PHARMAOPS_KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
