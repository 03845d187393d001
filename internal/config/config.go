package config

import (
	"os"
	"path/filepath"

	"fjacquet/portfolio-parser/internal/logging"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from a .env file in the working directory or its
// parent, if one exists. Variables already set in the environment win. It
// returns the file loaded, or "".
func LoadEnv(logger logging.Logger) string {
	envFile := ".env"
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		// Try to find .env in parent directory (project root)
		envFile = filepath.Join("..", ".env")
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			return ""
		}
	}

	if err := godotenv.Load(envFile); err != nil {
		if logger != nil {
			logger.WithError(err).Warn("Error loading .env file")
		}
		return ""
	}
	return envFile
}

// NewLogger builds the application logger described by cfg.
func NewLogger(cfg *Config) (logging.Logger, error) {
	return logging.NewLogrusAdapterWithFile(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
}
