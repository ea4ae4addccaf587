package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
)

// MinioConfig configures a MinIO store.
type MinioConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Region        string
	UseSSL        bool
	PublicBaseURL string
	PageSize      int
	CreateBucket  bool
}

// MinioStore implements ObjectStore with minio-go. Listing pages are emulated
// with StartAfter since the client streams results.
type MinioStore struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
	pageSize      int
	logger        *logging.ChanneledLogger
}

func NewMinioStore(ctx context.Context, cfg MinioConfig, logger *logging.ChanneledLogger) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if !cfg.CreateBucket {
			return nil, fmt.Errorf("bucket %s does not exist", cfg.Bucket)
		}
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Storage().Info("Created bucket", "bucket", cfg.Bucket)
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 1000
	}

	logger.Storage().Info("MinIO store initialized", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket)
	return &MinioStore{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: cfg.PublicBaseURL,
		pageSize:      pageSize,
		logger:        logger,
	}, nil
}

func (m *MinioStore) List(ctx context.Context, prefix, token string) (Page, error) {
	// Cancelling stops the listing goroutine once a page is full.
	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	objectsCh := m.client.ListObjects(listCtx, m.bucket, minio.ListObjectsOptions{
		Prefix:     prefix,
		Recursive:  true,
		StartAfter: token,
		MaxKeys:    m.pageSize,
	})

	page := Page{Objects: make([]Object, 0, m.pageSize)}
	for obj := range objectsCh {
		if obj.Err != nil {
			return Page{}, fmt.Errorf("failed to list objects: %w", obj.Err)
		}
		page.Objects = append(page.Objects, Object{Key: obj.Key, Size: obj.Size})
		if len(page.Objects) == m.pageSize {
			page.NextToken = obj.Key
			break
		}
	}
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	return page, nil
}

func (m *MinioStore) Stat(ctx context.Context, key string) (bool, error) {
	_, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if code := minio.ToErrorResponse(err).Code; code == "NoSuchKey" || code == "NotFound" {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat object %s: %w", key, err)
}

func (m *MinioStore) Delete(ctx context.Context, keys []string) (map[string]error, error) {
	objectsCh := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		objectsCh <- minio.ObjectInfo{Key: k}
	}
	close(objectsCh)

	failures := make(map[string]error)
	for removeErr := range m.client.RemoveObjects(ctx, m.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if removeErr.Err != nil {
			failures[removeErr.ObjectName] = removeErr.Err
		}
	}
	if err := ctx.Err(); err != nil {
		for _, k := range keys {
			if _, failed := failures[k]; !failed {
				failures[k] = err
			}
		}
		return failures, err
	}
	return failures, nil
}

func (m *MinioStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return nil
}

func (m *MinioStore) PublicURL(key string) string {
	if m.publicBaseURL != "" {
		return joinURL(m.publicBaseURL, key)
	}
	return joinURL(m.client.EndpointURL().String(), m.bucket+"/"+key)
}

// CheckConnection is used by the health endpoint.
func (m *MinioStore) CheckConnection(ctx context.Context) error {
	if m == nil || m.client == nil {
		return errors.New("minio store not initialized")
	}
	_, err := m.client.BucketExists(ctx, m.bucket)
	return err
}
