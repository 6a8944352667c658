package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// loadEnvFiles loads environment variables from .env/.env.local files.
// Existing process environment variables are never overwritten; a missing
// file is not an error.
func loadEnvFiles() {
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			slog.Warn("Failed to load env file", "path", envPath, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "path", envPath)
	}
}

// applyEnvOverrides maps selected environment variables onto the config.
// These take precedence over file values so deployments can override
// endpoints without editing the config file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TEXTKIT_NATS_URL"); v != "" {
		cfg.Check.NATSURL = v
	}
	if v := os.Getenv("TEXTKIT_CACHE_PATH"); v != "" {
		cfg.Check.CachePath = v
	}
	if v := os.Getenv("TEXTKIT_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TEXTKIT_PUBLIC_HOST"); v != "" {
		cfg.Server.PublicHost = v
	}
	if v := os.Getenv("TEXTKIT_DOCUMENT_ROOT"); v != "" {
		cfg.Server.DocumentRoot = v
	}
}
