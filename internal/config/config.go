package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string // REFDATA_DATABASE_URL (required)
	HTTPAddr    string // REFDATA_HTTP_ADDR (default ":8080")
	NATSURL     string // REFDATA_NATS_URL (optional, empty = no events)
	AuthToken   string // REFDATA_AUTH_TOKEN (optional, empty = auth disabled)
	AdminToken  string // REFDATA_ADMIN_TOKEN (optional, gates write endpoints; falls back to AuthToken)

	// Sync settings
	SyncInterval   time.Duration // REFDATA_SYNC_INTERVAL (default 3m; 0 = disabled)
	SyncS3Bucket   string        // REFDATA_SYNC_S3_BUCKET (enables S3 when set)
	SyncS3Endpoint string        // REFDATA_SYNC_S3_ENDPOINT (custom endpoint for MinIO)
	SyncS3Region   string        // REFDATA_SYNC_S3_REGION (default "us-east-1")
	SyncS3Key      string        // REFDATA_SYNC_S3_KEY (default "refdata/backup.jsonl")
}

func Load() (*Config, error) {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load(".env")

	c := &Config{
		DatabaseURL:    os.Getenv("REFDATA_DATABASE_URL"),
		HTTPAddr:       envOrDefault("REFDATA_HTTP_ADDR", ":8080"),
		NATSURL:        os.Getenv("REFDATA_NATS_URL"),
		AuthToken:      os.Getenv("REFDATA_AUTH_TOKEN"),
		AdminToken:     os.Getenv("REFDATA_ADMIN_TOKEN"),
		SyncS3Bucket:   os.Getenv("REFDATA_SYNC_S3_BUCKET"),
		SyncS3Endpoint: os.Getenv("REFDATA_SYNC_S3_ENDPOINT"),
		SyncS3Region:   envOrDefault("REFDATA_SYNC_S3_REGION", "us-east-1"),
		SyncS3Key:      envOrDefault("REFDATA_SYNC_S3_KEY", "refdata/backup.jsonl"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("REFDATA_DATABASE_URL is required")
	}
	if c.AdminToken == "" {
		c.AdminToken = c.AuthToken
	}

	intervalStr := envOrDefault("REFDATA_SYNC_INTERVAL", "3m")
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("REFDATA_SYNC_INTERVAL: %w", err)
		}
		c.SyncInterval = d
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
