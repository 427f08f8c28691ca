package gridfs

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/propview/realty-service/internal/listing/domain"
	"github.com/propview/realty-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const bucketName = "images"

// Store keeps image blobs chunked inside MongoDB GridFS. Chunk boundaries are
// an implementation detail of the bucket; callers only ever see a byte stream
// and the opaque file id.
type Store struct {
	bucket *gridfs.Bucket
	logger logger.Logger
}

type fileMetadata struct {
	ContentType string `bson:"content_type"`
	ListingID   string `bson:"listing_id,omitempty"`
}

func NewStore(db *mongo.Database, log logger.Logger) (*Store, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, fmt.Errorf("failed to create gridfs bucket: %w", err)
	}
	return &Store{bucket: bucket, logger: log}, nil
}

func (s *Store) Put(ctx context.Context, r io.Reader, filename, contentType, listingID string) (string, error) {
	uploadOpts := options.GridFSUpload().SetMetadata(fileMetadata{
		ContentType: contentType,
		ListingID:   listingID,
	})

	stream, err := s.bucket.OpenUploadStream(filename, uploadOpts)
	if err != nil {
		return "", fmt.Errorf("failed to open gridfs upload stream: %w", err)
	}

	if _, err := io.Copy(stream, r); err != nil {
		_ = stream.Close()
		return "", fmt.Errorf("failed to write image chunks: %w", err)
	}
	if err := stream.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize gridfs upload: %w", err)
	}

	id := stream.FileID.(primitive.ObjectID).Hex()
	s.logger.Debugf("gridfs: stored image %s (%s)", id, filename)
	return id, nil
}

func (s *Store) Get(ctx context.Context, id string) (io.ReadCloser, *domain.Image, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil, domain.ErrInvalidImageID
	}

	stream, err := s.bucket.OpenDownloadStream(oid)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, nil, domain.ErrImageNotFound
		}
		return nil, nil, err
	}

	file := stream.GetFile()
	img := &domain.Image{
		ID:          id,
		Filename:    file.Name,
		Length:      file.Length,
		UploadedAt:  file.UploadDate,
		ContentType: "",
	}
	if len(file.Metadata) > 0 {
		var meta fileMetadata
		if err := bson.Unmarshal(file.Metadata, &meta); err == nil {
			img.ContentType = meta.ContentType
			img.ListingID = meta.ListingID
		}
	}

	return stream, img, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidImageID
	}

	err = s.bucket.Delete(oid)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return domain.ErrImageNotFound
	}
	return err
}
