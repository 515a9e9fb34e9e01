package config

import (
	"fmt"

	"github.com/caarlos0/env/v9"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// GlobalConfig holds settings shared by every service.
type GlobalConfig struct {
	ServerPort string `env:"SERVER_PORT" envDefault:"8084" validate:"required,numeric"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogFormat  string `env:"LOG_FORMAT" envDefault:"console" validate:"oneof=console json"`
}

// LoadDotEnv loads a .env file for local development. A missing file is not an error.
func LoadDotEnv(paths ...string) bool {
	return godotenv.Load(paths...) == nil
}

// Parse fills cfg from the environment and validates it.
// cfg must be a pointer to a struct carrying env tags.
func Parse(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
