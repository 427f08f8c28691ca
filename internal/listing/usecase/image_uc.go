package usecase

import (
	"context"
	"io"

	"github.com/propview/realty-service/internal/listing/domain"
)

const defaultImageContentType = "image/jpeg"

// Upload is one file of a multipart upload, already size- and MIME-checked
// by the transport.
type Upload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
}

// UploadImages writes each file to the object store and then links the new
// blob ids to the listing. The writes are not transactional with the link: if
// the listing turns out to be absent the blobs stay behind as orphans, which
// is accepted rather than reconciled.
func (uc *ListingUsecase) UploadImages(ctx context.Context, listingID string, files []Upload) ([]string, *domain.Listing, error) {
	if len(files) == 0 {
		return nil, nil, domain.ErrNoImages
	}

	blobIDs := make([]string, 0, len(files))
	for _, f := range files {
		id, err := uc.store.Put(ctx, f.Reader, f.Filename, f.ContentType, listingID)
		if err != nil {
			uc.logger.Errorf("UploadImages: store put failed for %s: %v", f.Filename, err)
			return nil, nil, err
		}
		blobIDs = append(blobIDs, id)
	}

	listing, err := uc.AttachImages(ctx, listingID, blobIDs)
	if err != nil {
		return blobIDs, nil, err
	}
	return blobIDs, listing, nil
}

// AttachImages appends blob ids to the listing's image list. Duplicates are
// not deduplicated; concurrent attaches both land.
func (uc *ListingUsecase) AttachImages(ctx context.Context, listingID string, blobIDs []string) (*domain.Listing, error) {
	if len(blobIDs) == 0 {
		return nil, domain.ErrNoImages
	}

	listing, err := uc.repo.PushImages(ctx, listingID, blobIDs)
	if err != nil {
		return nil, err
	}

	uc.cacheInvalidate(ctx, listingID)
	return listing, nil
}

// DetachImages deletes each blob from the store (best-effort, like listing
// deletion) and removes the ids from the listing's image list.
func (uc *ListingUsecase) DetachImages(ctx context.Context, listingID string, blobIDs []string) (*domain.Listing, error) {
	if len(blobIDs) == 0 {
		return nil, domain.ErrNoImages
	}

	uc.deleteBlobs(ctx, blobIDs)

	listing, err := uc.repo.PullImages(ctx, listingID, blobIDs)
	if err != nil {
		return nil, err
	}

	uc.cacheInvalidate(ctx, listingID)
	return listing, nil
}

// FetchImage validates the id before any store lookup and then streams the
// blob. Null placeholders leaking from clients ("null", "undefined") are
// rejected as invalid ids, never treated as absent blobs.
func (uc *ListingUsecase) FetchImage(ctx context.Context, blobID string) (io.ReadCloser, *domain.Image, error) {
	if blobID == "" || blobID == "null" || blobID == "undefined" {
		return nil, nil, domain.ErrInvalidImageID
	}

	rc, img, err := uc.store.Get(ctx, blobID)
	if err != nil {
		return nil, nil, err
	}

	if img.ContentType == "" {
		img.ContentType = defaultImageContentType
	}
	return rc, img, nil
}
