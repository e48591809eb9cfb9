package stores

import (
	"building-planner/config"
	"building-planner/core"
	"building-planner/stores/aws"
	"building-planner/stores/filesystem"
	"building-planner/stores/memory"
	"building-planner/stores/sqlite"
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// NewStore builds the DrawingStore selected by cfg.StorageType.
func NewStore(ctx context.Context, cfg *config.Config) (core.DrawingStore, error) {
	storageField := logrus.Fields{
		"storageType": cfg.StorageType,
	}

	var (
		store core.DrawingStore
		err   error
	)
	switch cfg.StorageType {
	case config.StorageFilesystem:
		storageField["basePath"] = cfg.LocalStoragePath
		store, err = filesystem.NewDrawingStore(cfg.LocalStoragePath)
	case config.StorageSQLite:
		storageField["dataSourceName"] = cfg.DataSourceName
		store, err = sqlite.NewDrawingStore(cfg.DataSourceName)
	case config.StorageS3:
		if cfg.S3BucketName == "" {
			return nil, fmt.Errorf("S3_BUCKET_NAME environment variable must be set for s3 storage type")
		}
		storageField["bucketName"] = cfg.S3BucketName
		store, err = aws.NewDrawingStore(ctx, cfg.S3BucketName)
	case config.StorageMemory, "":
		store = memory.NewDrawingStore()
		storageField["storageType"] = "in-memory"
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}
	if err != nil {
		return nil, err
	}

	logrus.WithFields(storageField).Info("Use storage")
	return store, nil
}

// GetStore is NewStore for process start-up: it exits on failure.
func GetStore(cfg *config.Config) core.DrawingStore {
	store, err := NewStore(context.Background(), cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialise storage")
	}
	return store
}
