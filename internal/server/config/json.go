package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/clinicdesk/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Durations accept
// "168h"-style strings or integer nanoseconds.
type JsonConfig struct {
	HTTPAddr              string          `json:"http_addr"`
	GRPCHealthAddr        string          `json:"grpc_health_addr"`
	DatabaseDSN           string          `json:"database_dsn"`
	StorageMode           string          `json:"storage"`
	SecretKey             string          `json:"secret_key"`
	TokenValidityDuration *timex.Duration `json:"token_validity_duration"`
	BcryptCost            int             `json:"bcrypt_cost"`
	DBTimeout             *timex.Duration `json:"db_timeout"`
	LogLevel              string          `json:"log_level"`
	CORSOrigins           []string        `json:"cors_origins"`
}

// parseJSON overlays the fields present in the file onto config.
func parseJSON(config *Config, path string) error {
	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCHealthAddr, c.GRPCHealthAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.StorageMode, c.StorageMode)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)
	if c.TokenValidityDuration != nil {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.DBTimeout != nil {
		config.DBTimeout = c.DBTimeout.Duration
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.CORSOrigins != nil {
		config.CORSOrigins = c.CORSOrigins
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
