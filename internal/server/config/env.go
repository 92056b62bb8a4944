package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// loadEnvironment merges the dotenv file under the process environment,
// so real variables win. A missing default .env is ignored; a missing
// explicitly named file is an error.
func loadEnvironment(envFile string, osEnv []string) (map[string]string, error) {
	path := envFile
	if path == "" {
		path = defaultEnvFile
	}

	merged, err := godotenv.Read(path)
	if err != nil {
		if envFile != "" || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read env file %s: %w", path, err)
		}
		merged = map[string]string{}
	}

	for k, v := range env.ToMap(osEnv) {
		merged[k] = v
	}
	return merged, nil
}

// parseEnv sets the fields whose variables are present in environ.
func parseEnv(config *Config, environ map[string]string) error {
	if err := env.ParseWithOptions(config, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
