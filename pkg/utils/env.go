package utils

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// LoadEnv loads environment variables from multiple .env files
// Returns a map of environment variables, with earlier files taking precedence
// (godotenv never overrides a variable that is already set)
func LoadEnv(files ...string) map[string]string {
	config := make(map[string]string)

	// Load each file in order
	for _, file := range files {
		if _, err := os.Stat(file); err == nil {
			if err := godotenv.Load(file); err != nil {
				log.Warn().Str("component", "utils").Str("file", file).Err(err).Msg("could not load env file")
			}
		}
	}

	// Read all environment variables into map
	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if ok && key != "" {
			config[key] = value
		}
	}

	return config
}

// EnvFile returns the .env file to load, honoring ENV_FILE
func EnvFile() string {
	if file := os.Getenv("ENV_FILE"); file != "" {
		return file
	}
	return ".env"
}
