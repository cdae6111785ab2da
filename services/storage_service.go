// File: /services/storage_service.go
package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"tripcrew-api/config"
)

// StorageService uploads avatar images to an S3-compatible bucket and hands
// back the public URL stored on the profile.
type StorageService struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	client, err := minio.New(cfg.StorageEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.StorageAccessKey, cfg.StorageSecretKey, ""),
		Secure: cfg.StorageUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	service := &StorageService{
		client:    client,
		bucket:    cfg.StorageBucket,
		publicURL: cfg.StoragePublicURL,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.StorageBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check storage bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.StorageBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create storage bucket: %w", err)
		}
	}

	return service, nil
}

// UploadAvatar stores an avatar image under a per-user prefix and returns
// its public URL.
func (s *StorageService) UploadAvatar(ctx context.Context, userID, filename, contentType string, reader io.Reader, size int64) (string, error) {
	objectName := fmt.Sprintf("avatars/%s/%s%s", userID, uuid.New().String(), path.Ext(filename))

	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, objectName), nil
}
