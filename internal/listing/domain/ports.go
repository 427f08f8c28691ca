package domain

import (
	"context"
	"io"
	"time"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *Listing) error
	Update(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Listing, error)
	// FindAll returns listings newest-first. A non-empty ownerID restricts the
	// result to that owner's listings.
	FindAll(ctx context.Context, ownerID string) ([]*Listing, error)
	// PushImages appends blob ids to the listing's image list without
	// deduplication. PullImages removes the given ids (set difference).
	PushImages(ctx context.Context, id string, imageIDs []string) (*Listing, error)
	PullImages(ctx context.Context, id string, imageIDs []string) (*Listing, error)
}

// ImageStore persists binary blobs as chunks plus metadata, addressed by an
// opaque id. No transaction ties a store write to any repository write;
// callers tolerate orphaned blobs instead of preventing them.
type ImageStore interface {
	Put(ctx context.Context, r io.Reader, filename, contentType, listingID string) (string, error)
	// Get streams the blob lazily. The returned reader is single-pass and must
	// be closed by the caller.
	Get(ctx context.Context, id string) (io.ReadCloser, *Image, error)
	Delete(ctx context.Context, id string) error
}

type ListingCache interface {
	GetListing(ctx context.Context, id string) (*Listing, error)
	SetListing(ctx context.Context, listing *Listing, ttl time.Duration) error
	DeleteListing(ctx context.Context, id string) error
}

// Subjects published on listing lifecycle transitions. Consumers are other
// services (search indexer, notifications); publishing is fire-and-forget.
const (
	SubjectListingCreated = "listing.created"
	SubjectListingUpdated = "listing.updated"
	SubjectListingDeleted = "listing.deleted"
)

type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}
