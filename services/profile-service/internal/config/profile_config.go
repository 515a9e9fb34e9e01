package config

import (
	"errors"
	"log"

	"seungpyo.lee/StudentPortal/pkg/config"
)

const (
	BackendFS     = "fs"
	BackendAzBlob = "azblob"
)

// ProfileConfig extends GlobalConfig with profile-service specific settings.
type ProfileConfig struct {
	config.GlobalConfig
	ImageBaseDir                 string `env:"PROFILE_IMAGE_BASE_DIR" envDefault:"./profile-images/"`
	DefaultImage                 string `env:"PROFILE_DEFAULT_IMAGE" envDefault:"default.png" validate:"required"`
	StorageBackend               string `env:"PROFILE_STORAGE_BACKEND" envDefault:"fs" validate:"oneof=fs azblob"`
	AzureStorageConnectionString string `env:"AZURE_STORAGE_CONNECTION_STRING" validate:"required_if=StorageBackend azblob"`
	BlobContainerName            string `env:"BLOB_CONTAINER_NAME" envDefault:"profile-images" validate:"required_if=StorageBackend azblob"`
	PostgresDSN                  string `env:"POSTGRES_DSN"`
	RedisAddr                    string `env:"REDIS_ADDR"`
	RedisPassword                string `env:"REDIS_PASSWORD"`
	JWTSecretKey                 string `env:"JWT_SECRET_KEY"`
	MaxUploadBytes               int64  `env:"PROFILE_MAX_UPLOAD_BYTES" envDefault:"5242880" validate:"gt=0"`
	DetectContentType            bool   `env:"PROFILE_DETECT_CONTENT_TYPE" envDefault:"false"`
}

// UploadsEnabled reports whether the authenticated upload and delete routes are served.
func (c *ProfileConfig) UploadsEnabled() bool {
	return c.JWTSecretKey != ""
}

func LoadProfileConfig() (*ProfileConfig, error) {
	// Load .env file for local development
	if !config.LoadDotEnv() {
		log.Println("No .env file found, reading from environment variables")
	}
	var cfg ProfileConfig
	if err := config.Parse(&cfg); err != nil {
		return nil, err
	}
	if cfg.StorageBackend == BackendFS && cfg.ImageBaseDir == "" {
		return nil, errors.New("critical config missing: PROFILE_IMAGE_BASE_DIR")
	}
	return &cfg, nil
}
