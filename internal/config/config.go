package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	Addr            string // DASHD_ADDR (default ":8787")
	ProjectRoot     string // DASHD_PROJECT_ROOT (default: current directory)
	DatabaseURL     string // DASHD_DATABASE_URL (optional, empty = in-memory history)
	NATSURL         string // DASHD_NATS_URL (optional, empty = no events)
	AutomationsFile string // DASHD_AUTOMATIONS_FILE (optional TOML registry)

	// SweepInterval is how often expired sessions are reaped.
	SweepInterval time.Duration // DASHD_SWEEP_INTERVAL (default 30s)

	// Export settings
	ExportInterval   time.Duration // DASHD_EXPORT_INTERVAL (default 0 = disabled)
	ExportS3Bucket   string        // DASHD_EXPORT_S3_BUCKET (enables S3 when set)
	ExportS3Endpoint string        // DASHD_EXPORT_S3_ENDPOINT (custom endpoint for MinIO)
	ExportS3Region   string        // DASHD_EXPORT_S3_REGION (default "us-east-1")
	ExportS3Key      string        // DASHD_EXPORT_S3_KEY (default "dashd/runs.jsonl")
}

func Load() (*Config, error) {
	c := &Config{
		Addr:             envOrDefault("DASHD_ADDR", ":8787"),
		ProjectRoot:      os.Getenv("DASHD_PROJECT_ROOT"),
		DatabaseURL:      os.Getenv("DASHD_DATABASE_URL"),
		NATSURL:          os.Getenv("DASHD_NATS_URL"),
		AutomationsFile:  os.Getenv("DASHD_AUTOMATIONS_FILE"),
		ExportS3Bucket:   os.Getenv("DASHD_EXPORT_S3_BUCKET"),
		ExportS3Endpoint: os.Getenv("DASHD_EXPORT_S3_ENDPOINT"),
		ExportS3Region:   envOrDefault("DASHD_EXPORT_S3_REGION", "us-east-1"),
		ExportS3Key:      envOrDefault("DASHD_EXPORT_S3_KEY", "dashd/runs.jsonl"),
	}

	if c.ProjectRoot == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve project root: %w", err)
		}
		c.ProjectRoot = cwd
	}
	if info, err := os.Stat(c.ProjectRoot); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("DASHD_PROJECT_ROOT is not a directory: %s", c.ProjectRoot)
	}

	var err error
	if c.SweepInterval, err = envDuration("DASHD_SWEEP_INTERVAL", "30s"); err != nil {
		return nil, err
	}
	if c.ExportInterval, err = envDuration("DASHD_EXPORT_INTERVAL", "0"); err != nil {
		return nil, err
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key, fallback string) (time.Duration, error) {
	s := envOrDefault(key, fallback)
	if s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
