package config

import (
	"errors"
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// WithEnv reads the process environment into the configuration. Unset
// variables fall back to their env-default tags, so options meant to
// override the environment must come after WithEnv.
//
//	PORT, ENVIRONMENT, PUBLIC_BASE_URL, JWT_KEY
//	DATABASE_URL  memory | mongodb://... | postgres://... | redis://...
//	DATABASE_NAME mongo database name
//	STORAGE_URL   memory:// | file:///path | s3://bucket/prefix?region=...
//	S3_ACCESS_KEY_ID, S3_SECRET_ACCESS_KEY, S3_ENDPOINT, S3_USE_PATH_STYLE,
//	S3_CREATE_BUCKET_IF_NOT_EXIST, ATTACH_UPLOADED_IMAGE
func WithEnv() Option {
	return func(c *ServerConfig) error {
		if err := cleanenv.ReadEnv(c); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
		return nil
	}
}

// WithPort sets the HTTP port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return errors.New("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the runtime environment name
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		c.Environment = env
		return nil
	}
}

// WithJWTSecret sets the bearer token secret
func WithJWTSecret(secret string) Option {
	return func(c *ServerConfig) error {
		c.JWTSecret = secret
		return nil
	}
}

// WithPublicBaseURL sets the origin used for self-links
func WithPublicBaseURL(baseURL string) Option {
	return func(c *ServerConfig) error {
		c.PublicBaseURL = baseURL
		return nil
	}
}

// WithDatabaseURL selects the repository backend
func WithDatabaseURL(databaseURL string) Option {
	return func(c *ServerConfig) error {
		c.DatabaseURL = databaseURL
		return nil
	}
}

// WithStorageURL selects the blob store backend
func WithStorageURL(storageURL string) Option {
	return func(c *ServerConfig) error {
		c.StorageURL = storageURL
		return nil
	}
}

// WithUploadDir stores uploads in dir on the local filesystem
func WithUploadDir(dir string) Option {
	return func(c *ServerConfig) error {
		if dir == "" {
			return errors.New("upload directory cannot be empty")
		}
		c.StorageURL = "file://" + dir
		return nil
	}
}

// WithAttachImages controls whether stored image names are written to records
func WithAttachImages(attach bool) Option {
	return func(c *ServerConfig) error {
		c.AttachImages = attach
		return nil
	}
}
