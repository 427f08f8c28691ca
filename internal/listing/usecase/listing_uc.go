package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/propview/realty-service/internal/listing/domain"
	"github.com/propview/realty-service/internal/platform/logger"
)

const listingCacheTTL = 1 * time.Hour

// ListingUsecase orchestrates listing CRUD and the listing/image linkage.
// Repository and store writes are never tied by a transaction; cleanup paths
// are best-effort by design and tolerate dangling references.
type ListingUsecase struct {
	repo      domain.ListingRepository
	store     domain.ImageStore
	cache     domain.ListingCache
	publisher domain.EventPublisher
	logger    logger.Logger
}

func NewListingUsecase(
	repo domain.ListingRepository,
	store domain.ImageStore,
	cache domain.ListingCache,
	publisher domain.EventPublisher,
	log logger.Logger,
) *ListingUsecase {
	return &ListingUsecase{
		repo:      repo,
		store:     store,
		cache:     cache,
		publisher: publisher,
		logger:    log,
	}
}

// CreateListing persists a text-only listing owned by the principal. Images
// are attached in a second phase so clients get a listing id before pushing
// large binary payloads.
func (uc *ListingUsecase) CreateListing(ctx context.Context, principal domain.Principal, in domain.ListingInput) (*domain.Listing, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}

	listing := &domain.Listing{
		Name:          in.Name,
		Description:   in.Description,
		Address:       in.Address,
		Type:          in.Type,
		Bedrooms:      in.Bedrooms,
		Bathrooms:     in.Bathrooms,
		SquareFootage: in.SquareFootage,
		ContactNumber: in.ContactNumber,
		RegularPrice:  in.RegularPrice,
		DiscountPrice: in.DiscountPrice,
		Offer:         in.Offer,
		Parking:       in.Parking,
		Furnished:     in.Furnished,
		UserRef:       principal.UserID,
		Images:        []string{},
	}

	if err := uc.repo.Create(ctx, listing); err != nil {
		uc.logger.Errorf("CreateListing: repository create failed: %v", err)
		return nil, err
	}

	uc.cacheSet(ctx, listing)
	uc.publish(ctx, domain.SubjectListingCreated, listing)

	return listing, nil
}

// ListListings returns listings newest-first. A seller only sees their own
// listings; every other role sees everything. Image ids are rewritten into
// fetchable URLs against baseURL.
func (uc *ListingUsecase) ListListings(ctx context.Context, principal domain.Principal, baseURL string) ([]*domain.Listing, error) {
	ownerID := ""
	if principal.Role == domain.RoleSeller {
		ownerID = principal.UserID
	}

	listings, err := uc.repo.FindAll(ctx, ownerID)
	if err != nil {
		uc.logger.Errorf("ListListings: repository find failed: %v", err)
		return nil, err
	}

	for _, l := range listings {
		materializeImageURLs(l, baseURL)
	}
	return listings, nil
}

func (uc *ListingUsecase) GetListing(ctx context.Context, id, baseURL string) (*domain.Listing, error) {
	listing, err := uc.findListing(ctx, id)
	if err != nil {
		return nil, err
	}

	materializeImageURLs(listing, baseURL)
	return listing, nil
}

// UpdateListing re-runs the full field constraint set before any write; an
// update that fails validation commits nothing. The owner reference and id
// never change.
func (uc *ListingUsecase) UpdateListing(ctx context.Context, id string, in domain.ListingInput) (*domain.Listing, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}

	listing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	listing.Name = in.Name
	listing.Description = in.Description
	listing.Address = in.Address
	listing.Type = in.Type
	listing.Bedrooms = in.Bedrooms
	listing.Bathrooms = in.Bathrooms
	listing.SquareFootage = in.SquareFootage
	listing.ContactNumber = in.ContactNumber
	listing.RegularPrice = in.RegularPrice
	listing.DiscountPrice = in.DiscountPrice
	listing.Offer = in.Offer
	listing.Parking = in.Parking
	listing.Furnished = in.Furnished

	if err := uc.repo.Update(ctx, listing); err != nil {
		uc.logger.Errorf("UpdateListing: repository update failed for %s: %v", id, err)
		return nil, err
	}

	uc.cacheInvalidate(ctx, id)
	uc.publish(ctx, domain.SubjectListingUpdated, listing)

	return listing, nil
}

// DeleteListing removes the record and attempts to delete every referenced
// blob. A failure deleting one blob is logged and skipped so the remaining
// blobs and the record deletion still proceed.
func (uc *ListingUsecase) DeleteListing(ctx context.Context, id string) error {
	listing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	uc.deleteBlobs(ctx, listing.Images)

	if err := uc.repo.Delete(ctx, id); err != nil {
		uc.logger.Errorf("DeleteListing: repository delete failed for %s: %v", id, err)
		return err
	}

	uc.cacheInvalidate(ctx, id)
	uc.publish(ctx, domain.SubjectListingDeleted, map[string]string{"listingId": id})

	return nil
}

func (uc *ListingUsecase) findListing(ctx context.Context, id string) (*domain.Listing, error) {
	if cached, err := uc.cache.GetListing(ctx, id); err == nil && cached != nil {
		return cached, nil
	}

	listing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	uc.cacheSet(ctx, listing)
	return listing, nil
}

// deleteBlobs removes stored blobs sequentially, continuing past individual
// failures so one bad identifier cannot block cleanup of the rest. Legacy
// URL entries never had a stored blob and are skipped.
func (uc *ListingUsecase) deleteBlobs(ctx context.Context, ids []string) {
	for _, imageID := range ids {
		if strings.HasPrefix(imageID, "http") {
			continue
		}
		if err := uc.store.Delete(ctx, imageID); err != nil {
			uc.logger.Warnf("error deleting image %s: %v", imageID, err)
		}
	}
}

func (uc *ListingUsecase) cacheSet(ctx context.Context, listing *domain.Listing) {
	if err := uc.cache.SetListing(ctx, listing, listingCacheTTL); err != nil {
		uc.logger.Warnf("listing cache set failed for %s: %v", listing.ID, err)
	}
}

func (uc *ListingUsecase) cacheInvalidate(ctx context.Context, id string) {
	if err := uc.cache.DeleteListing(ctx, id); err != nil {
		uc.logger.Warnf("listing cache invalidation failed for %s: %v", id, err)
	}
}

func (uc *ListingUsecase) publish(ctx context.Context, subject string, data interface{}) {
	if err := uc.publisher.Publish(ctx, subject, data); err != nil {
		uc.logger.Warnf("event publish failed for %s: %v", subject, err)
	}
}

// materializeImageURLs rewrites stored blob ids into fetchable URLs. Entries
// that are already absolute URLs (a previous storage scheme kept URLs in the
// image list) pass through unchanged.
func materializeImageURLs(l *domain.Listing, baseURL string) {
	urls := make([]string, 0, len(l.Images))
	for _, id := range l.Images {
		if strings.HasPrefix(id, "http") {
			urls = append(urls, id)
			continue
		}
		urls = append(urls, baseURL+"/api/listings/image/"+id)
	}
	l.Images = urls
}
