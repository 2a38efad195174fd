package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// test seams
var (
	loadDotEnv = func() error { return godotenv.Load() }
	lookupEnv  = os.LookupEnv
)

// parseEnv loads .env (if present) into the process environment and then
// picks up the secrets that are usually not kept in config files.
func parseEnv(config *Config) {
	if err := loadDotEnv(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	if v, ok := lookupEnv("DATABASE_DSN"); ok && v != "" {
		config.DatabaseDSN = v
	}
	if v, ok := lookupEnv("FINTRACK_SECRET_KEY"); ok && v != "" {
		config.SecretKey = v
	}
	if v, ok := lookupEnv("OPENROUTER_API_KEY"); ok && v != "" {
		config.VisionAPIKey = v
	}
	if v, ok := lookupEnv("OPENROUTER_BASE_URL"); ok && v != "" {
		config.VisionBaseURL = v
	}
}
