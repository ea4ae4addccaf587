package storage

import (
	"context"
	"fmt"

	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
	"github.com/Diampra/octopus-server/pkg/config"
)

const (
	DriverS3     = "s3"
	DriverMinio  = "minio"
	DriverMemory = "memory"
)

// NewObjectStoreFromConfig creates the store selected by STORAGE_DRIVER.
func NewObjectStoreFromConfig(ctx context.Context, logger *logging.ChanneledLogger) (ObjectStore, error) {
	switch config.StorageDriver {
	case DriverS3:
		return NewS3Store(ctx, S3Config{
			Bucket:        config.StorageBucket,
			Region:        config.StorageRegion,
			Endpoint:      config.StorageEndpoint,
			AccessKey:     config.StorageAccessKey,
			SecretKey:     config.StorageSecretKey,
			PublicBaseURL: config.StoragePublicBaseURL,
			PageSize:      config.StoragePageSize,
		}, logger)
	case DriverMinio:
		return NewMinioStore(ctx, MinioConfig{
			Endpoint:      config.StorageEndpoint,
			AccessKey:     config.StorageAccessKey,
			SecretKey:     config.StorageSecretKey,
			Bucket:        config.StorageBucket,
			Region:        config.StorageRegion,
			UseSSL:        config.StorageUseSSL,
			PublicBaseURL: config.StoragePublicBaseURL,
			PageSize:      config.StoragePageSize,
			CreateBucket:  true,
		}, logger)
	case DriverMemory:
		logger.Storage().Warn("Using in-memory object storage; uploads are lost on restart")
		return NewMemoryStore(config.StoragePageSize, config.StoragePublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", config.StorageDriver)
	}
}
