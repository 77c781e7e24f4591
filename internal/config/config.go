package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	ServiceName string
	Env         string
	LogLevel    string

	ServerPort int

	DatabaseURL string

	JWTSecret     []byte
	RefreshSecret []byte

	FrontendURL string

	KafkaBrokers    []string
	KafkaEventTopic string

	ESURL              string
	ESUser             string
	ESPassword         string
	ESParticipantIndex string
}

func Load() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "syntegra-api"),
		Env:         EnvDefault("APP_ENV", "development"),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		ServerPort: EnvIntDefault("SERVER_PORT", 8080),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:     []byte(os.Getenv("JWT_SECRET")),
		RefreshSecret: []byte(os.Getenv("JWT_REFRESH_SECRET")),

		FrontendURL: EnvDefault("FRONTEND_URL", "http://localhost:3000"),

		KafkaBrokers:    CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaEventTopic: EnvDefault("KAFKA_TOPIC_EVENTS", "syntegra.events"),

		ESURL:              os.Getenv("ES_URL"),
		ESUser:             os.Getenv("ES_USER"),
		ESPassword:         os.Getenv("ES_PASSWORD"),
		ESParticipantIndex: EnvDefault("ES_INDEX_PARTICIPANTS", "participants"),
	}
}

// IsProduction gates whether internal error detail is surfaced to clients.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if os.Getenv(key) != "" {
		return os.Getenv(key)
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}
