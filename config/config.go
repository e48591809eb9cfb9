// Package config collects server settings from the environment and an
// optional .env file.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Storage backends understood by stores.GetStore.
const (
	StorageMemory     = "memory"
	StorageSQLite     = "sqlite"
	StorageFilesystem = "filesystem"
	StorageS3         = "s3"
)

type Config struct {
	StorageType      string
	DataSourceName   string
	LocalStoragePath string
	S3BucketName     string
	FrontendURLs     []string
	ListenAddr       string
	LogLevel         string
}

// Load reads .env (if present) into the process environment, then builds
// the configuration from it.
func Load(files ...string) *Config {
	if err := godotenv.Load(files...); err != nil {
		logrus.Debug("No .env file found")
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() *Config {
	return &Config{
		StorageType:      strings.ToLower(getEnv("STORAGE_TYPE", StorageMemory)),
		DataSourceName:   getEnv("DATA_SOURCE_NAME", "building-planner.db"),
		LocalStoragePath: getEnv("LOCAL_STORAGE_PATH", "./data"),
		S3BucketName:     os.Getenv("S3_BUCKET_NAME"),
		FrontendURLs:     splitList(os.Getenv("FRONTEND_URL")),
		ListenAddr:       getEnv("LISTEN_ADDR", ":3001"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
