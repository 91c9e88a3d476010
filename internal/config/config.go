package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the application configuration.
type Config struct {
	Env         string `envconfig:"ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`

	// DatabaseURL is the single store connection input. When empty, the
	// store stays permanently unavailable and the service degrades instead
	// of crashing.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// OwnerOpenID grants the admin role to the matching external identity
	// on first login without an explicit role.
	OwnerOpenID string `envconfig:"OWNER_OPEN_ID"`
}

// LoadConfig loads configuration from the environment, optionally reading a
// .env file first.
func LoadConfig(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			if err := godotenv.Load(envFilePath); err != nil {
				log.Printf("Warning: could not load %s file: %v", envFilePath, err)
			}
		} else if !os.IsNotExist(err) {
			log.Printf("Warning: error checking %s file: %v", envFilePath, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}
	return &cfg, nil
}
