package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-attractions/pkg/attractions"
	memoryrepo "github.com/tendant/simple-attractions/pkg/attractions/repo/memory"
	mongorepo "github.com/tendant/simple-attractions/pkg/attractions/repo/mongo"
	repopg "github.com/tendant/simple-attractions/pkg/attractions/repo/postgres"
	redisrepo "github.com/tendant/simple-attractions/pkg/attractions/repo/redis"
	fsstorage "github.com/tendant/simple-attractions/pkg/attractions/storage/fs"
	memorystorage "github.com/tendant/simple-attractions/pkg/attractions/storage/memory"
	s3storage "github.com/tendant/simple-attractions/pkg/attractions/storage/s3"
)

// Database types, derived from DatabaseURL
const (
	DatabaseMemory   = "memory"
	DatabaseMongo    = "mongo"
	DatabasePostgres = "postgres"
	DatabaseRedis    = "redis"
)

// Storage types, derived from StorageURL
const (
	StorageMemory = "memory"
	StorageFS     = "fs"
	StorageS3     = "s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// ServerConfig is loaded once at process start and read-only thereafter.
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"3002"`
	Environment string `env:"ENVIRONMENT" env-default:"development"` // development, production, testing

	// PublicBaseURL is the origin used to build self-links
	PublicBaseURL string `env:"PUBLIC_BASE_URL" env-default:"http://localhost:3002"`

	// JWTSecret verifies bearer tokens
	JWTSecret string `env:"JWT_KEY"`

	// Database: "memory", "mongodb://...", "postgres://...", "redis://..."
	DatabaseURL  string `env:"DATABASE_URL" env-default:"memory"`
	DatabaseName string `env:"DATABASE_NAME" env-default:"attractions"`

	// Storage: "memory://", "file://./uploads", "s3://bucket?region=us-east-1"
	StorageURL string `env:"STORAGE_URL" env-default:"file://./uploads"`
	S3         S3Config

	// AttachImages writes the stored image name to the created record
	AttachImages bool `env:"ATTACH_UPLOADED_IMAGE" env-default:"false"`
}

// S3Config holds credentials and endpoint overrides for s3:// storage
type S3Config struct {
	AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	Endpoint        string `env:"S3_ENDPOINT"`
	UsePathStyle    bool   `env:"S3_USE_PATH_STYLE" env-default:"false"`
	CreateBucket    bool   `env:"S3_CREATE_BUCKET_IF_NOT_EXIST" env-default:"false"`
}

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:          "3002",
		Environment:   "development",
		PublicBaseURL: "http://localhost:3002",
		DatabaseURL:   "memory",
		DatabaseName:  "attractions",
		StorageURL:    "file://./uploads",
	}
}

// DatabaseType derives the repository backend from DatabaseURL
func (c *ServerConfig) DatabaseType() (string, error) {
	u := c.DatabaseURL
	switch {
	case u == "" || u == "memory":
		return DatabaseMemory, nil
	case strings.HasPrefix(u, "mongodb://"), strings.HasPrefix(u, "mongodb+srv://"):
		return DatabaseMongo, nil
	case strings.HasPrefix(u, "postgres://"), strings.HasPrefix(u, "postgresql://"):
		return DatabasePostgres, nil
	case strings.HasPrefix(u, "redis://"), strings.HasPrefix(u, "rediss://"):
		return DatabaseRedis, nil
	}
	return "", fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory', 'mongodb://...', 'postgres://...' or 'redis://...')", u)
}

// StorageType derives the blob store backend from StorageURL
func (c *ServerConfig) StorageType() (string, error) {
	u := c.StorageURL
	switch {
	case u == "" || u == "memory" || u == "memory://":
		return StorageMemory, nil
	case strings.HasPrefix(u, "file://"):
		return StorageFS, nil
	case strings.HasPrefix(u, "s3://"):
		return StorageS3, nil
	}
	return "", fmt.Errorf("unsupported STORAGE_URL format: %s (use 'memory://', 'file://...' or 's3://...')", u)
}

// UploadDir returns the directory of file:// storage
func (c *ServerConfig) UploadDir() string {
	return strings.TrimPrefix(c.StorageURL, "file://")
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.JWTSecret == "" {
		return errors.New("jwt secret is required (JWT_KEY)")
	}

	base, err := url.Parse(c.PublicBaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return fmt.Errorf("public base url must be absolute: %q", c.PublicBaseURL)
	}

	if _, err := c.DatabaseType(); err != nil {
		return err
	}

	storageType, err := c.StorageType()
	if err != nil {
		return err
	}
	if storageType == StorageFS && c.UploadDir() == "" {
		return errors.New("filesystem path cannot be empty in STORAGE_URL")
	}
	if storageType == StorageS3 {
		if _, _, _, err := parseS3URL(c.StorageURL); err != nil {
			return err
		}
	}

	return nil
}

// parseS3URL splits s3://bucket/prefix?region=... into its parts
func parseS3URL(raw string) (bucket, prefix, region string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", "", fmt.Errorf("invalid STORAGE_URL: %w", err)
	}
	if u.Host == "" {
		return "", "", "", errors.New("bucket name cannot be empty in STORAGE_URL")
	}
	prefix = strings.TrimPrefix(u.Path, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	region = u.Query().Get("region")
	if region == "" {
		region = "us-east-1"
	}
	return u.Host, prefix, region, nil
}

// BuildService creates the repository, blob store and service described by
// the configuration. The returned cleanup releases database connections.
func (c *ServerConfig) BuildService(ctx context.Context, options ...attractions.Option) (attractions.Service, func(), error) {
	repo, cleanup, err := c.buildRepository(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build repository: %w", err)
	}

	store, err := c.buildBlobStore(ctx)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to build blob store: %w", err)
	}

	opts := append([]attractions.Option{
		attractions.WithRepository(repo),
		attractions.WithBlobStore(store),
		attractions.WithAttachImages(c.AttachImages),
	}, options...)

	svc, err := attractions.New(opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}

// buildRepository creates a Repository based on the configuration
func (c *ServerConfig) buildRepository(ctx context.Context) (attractions.Repository, func(), error) {
	dbType, err := c.DatabaseType()
	if err != nil {
		return nil, nil, err
	}

	switch dbType {
	case DatabaseMemory:
		return memoryrepo.New(), func() {}, nil

	case DatabaseMongo:
		repo, client, err := mongorepo.Connect(ctx, c.DatabaseURL, c.DatabaseName)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { _ = client.Disconnect(context.Background()) }, nil

	case DatabasePostgres:
		pool, err := pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("database ping failed: %w", err)
		}
		repo := repopg.NewWithPool(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo, pool.Close, nil

	case DatabaseRedis:
		opts, err := redis.ParseURL(c.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("could not connect to redis: %w", err)
		}
		return redisrepo.New(client), func() { _ = client.Close() }, nil
	}

	return nil, nil, fmt.Errorf("unsupported database type: %s", dbType)
}

// buildBlobStore creates a BlobStore based on the configuration
func (c *ServerConfig) buildBlobStore(ctx context.Context) (attractions.BlobStore, error) {
	storageType, err := c.StorageType()
	if err != nil {
		return nil, err
	}

	switch storageType {
	case StorageMemory:
		return memorystorage.New(), nil

	case StorageFS:
		return fsstorage.New(fsstorage.Config{BaseDir: c.UploadDir()})

	case StorageS3:
		bucket, prefix, region, err := parseS3URL(c.StorageURL)
		if err != nil {
			return nil, err
		}
		return s3storage.New(ctx, s3storage.Config{
			Region:                 region,
			Bucket:                 bucket,
			Prefix:                 prefix,
			AccessKeyID:            c.S3.AccessKeyID,
			SecretAccessKey:        c.S3.SecretAccessKey,
			Endpoint:               c.S3.Endpoint,
			UsePathStyle:           c.S3.UsePathStyle,
			CreateBucketIfNotExist: c.S3.CreateBucket,
		})
	}

	return nil, fmt.Errorf("unsupported storage type: %s", storageType)
}
