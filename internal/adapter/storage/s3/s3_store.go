package s3

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/propview/realty-service/internal/app/config"
	"github.com/propview/realty-service/internal/listing/domain"
	"github.com/propview/realty-service/internal/platform/logger"
)

const (
	objectPrefix = "images/"

	metaFilename  = "Original-Filename"
	metaListingID = "Listing-Id"
)

// Store is the MinIO-backed blob store, selected with storage.backend: s3.
// Ids are uuids minted at upload time; content type and the originating
// listing id travel as object metadata.
type Store struct {
	client *minio.Client
	bucket string
	logger logger.Logger
}

func NewStore(cfg config.StorageConfig, log logger.Logger) (*Store, error) {
	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", cfg.MinIOEndpoint, err)
	}

	err = client.MakeBucket(context.Background(), cfg.MinIOBucket, minio.MakeBucketOptions{})
	if err != nil {
		exists, errBucketExists := client.BucketExists(context.Background(), cfg.MinIOBucket)
		if errBucketExists != nil || !exists {
			return nil, fmt.Errorf("failed to make/verify bucket %s: %w", cfg.MinIOBucket, err)
		}
	}

	return &Store{client: client, bucket: cfg.MinIOBucket, logger: log}, nil
}

func (s *Store) Put(ctx context.Context, r io.Reader, filename, contentType, listingID string) (string, error) {
	id := uuid.New().String()

	opts := minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			metaFilename:  filename,
			metaListingID: listingID,
		},
	}

	info, err := s.client.PutObject(ctx, s.bucket, objectPrefix+id, r, -1, opts)
	if err != nil {
		s.logger.Errorf("s3: PutObject failed for %s: %v", id, err)
		return "", fmt.Errorf("failed to upload object to bucket %s: %w", s.bucket, err)
	}

	s.logger.Debugf("s3: stored image %s (%s, %d bytes)", id, filename, info.Size)
	return id, nil
}

func (s *Store) Get(ctx context.Context, id string) (io.ReadCloser, *domain.Image, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil, domain.ErrInvalidImageID
	}

	obj, err := s.client.GetObject(ctx, s.bucket, objectPrefix+id, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, err
	}

	// GetObject is lazy; Stat forces the first request so an absent key
	// surfaces here instead of on the first Read.
	stat, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, nil, domain.ErrImageNotFound
		}
		return nil, nil, err
	}

	img := &domain.Image{
		ID:          id,
		Filename:    stat.UserMetadata[metaFilename],
		ContentType: stat.ContentType,
		Length:      stat.Size,
		ListingID:   stat.UserMetadata[metaListingID],
		UploadedAt:  stat.LastModified,
	}
	return obj, img, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrInvalidImageID
	}

	// RemoveObject succeeds on absent keys, so stat first to keep delete
	// NotFound-reporting like the gridfs backend.
	_, err := s.client.StatObject(ctx, s.bucket, objectPrefix+id, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return domain.ErrImageNotFound
		}
		return err
	}

	return s.client.RemoveObject(ctx, s.bucket, objectPrefix+id, minio.RemoveObjectOptions{})
}

var _ domain.ImageStore = (*Store)(nil)
