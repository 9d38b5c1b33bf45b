// Package config parses environment variables into tagged structs.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load fills cfg from the environment using its `env` struct tags.
//
// Example:
//
//	type Config struct {
//	    HTTPPort       int    `env:"SESSION_HTTP_PORT" envDefault:"8090"`
//	    BackendBaseURL string `env:"PROFILE_API_URL" envDefault:"http://localhost:5000"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
