package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Addr        string   // LEADDESK_ADDR, default ":8080"
	DBPath      string   // LEADDESK_DB, default "leaddesk.db"
	AuthToken   string   // LEADDESK_AUTH_TOKEN, optional
	AgentID     string   // LEADDESK_AGENT_ID, default "1"
	AMQPURL     string   // LEADDESK_AMQP_URL, optional; events are logged when empty
	CORSOrigins []string // LEADDESK_CORS_ORIGINS, comma-separated, default "*"
	LogLevel    string   // LOG_LEVEL, default "info"
}

// Load reads configuration from environment variables with sensible
// defaults. Variables in a .env file in the working directory are loaded
// first; they never override variables already set.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:        envOr("LEADDESK_ADDR", ":8080"),
		DBPath:      envOr("LEADDESK_DB", "leaddesk.db"),
		AuthToken:   os.Getenv("LEADDESK_AUTH_TOKEN"),
		AgentID:     envOr("LEADDESK_AGENT_ID", "1"),
		AMQPURL:     os.Getenv("LEADDESK_AMQP_URL"),
		CORSOrigins: splitList(envOr("LEADDESK_CORS_ORIGINS", "*")),
		LogLevel:    envOr("LOG_LEVEL", "info"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
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
