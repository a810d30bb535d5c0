package config

import "os"

// Config holds the environment-level settings for the server.
type Config struct {
	Port          string
	DatabasePath  string
	AllowedOrigin string
}

// Load reads configuration from environment variables with sane fallbacks.
func Load() Config {
	return Config{
		Port:          getEnv("PORT", "8008"),
		DatabasePath:  getEnv("DATABASE_PATH", "clinic-backoffice.db"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "*"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
