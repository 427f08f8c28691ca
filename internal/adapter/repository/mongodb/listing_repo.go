package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/propview/realty-service/internal/listing/domain"
	"github.com/propview/realty-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ListingRepository struct {
	collection *mongo.Collection
	logger     logger.Logger
}

func NewListingRepository(db *mongo.Database, log logger.Logger) *ListingRepository {
	return &ListingRepository{
		collection: db.Collection("listings"),
		logger:     log,
	}
}

func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	now := time.Now().UTC()
	listing.CreatedAt = now
	listing.UpdatedAt = now
	if listing.Images == nil {
		listing.Images = []string{}
	}

	doc, err := toListingDocument(listing)
	if err != nil {
		return fmt.Errorf("failed to prepare listing for database: %w", err)
	}

	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		r.logger.Errorf("ListingRepository.Create: InsertOne failed: %v", err)
		return err
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		listing.ID = oid.Hex()
	}
	return nil
}

func (r *ListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	oid, err := primitive.ObjectIDFromHex(listing.ID)
	if err != nil {
		return domain.ErrListingNotFound
	}

	listing.UpdatedAt = time.Now().UTC()
	doc, err := toListingDocument(listing)
	if err != nil {
		return fmt.Errorf("failed to prepare listing for database: %w", err)
	}

	res, err := r.collection.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"name":            doc.Name,
		"description":     doc.Description,
		"address":         doc.Address,
		"type":            doc.Type,
		"bedrooms":        doc.Bedrooms,
		"bathrooms":       doc.Bathrooms,
		"square_footage":  doc.SquareFootage,
		"contact_number":  doc.ContactNumber,
		"regular_price":   doc.RegularPrice,
		"discount_price":  doc.DiscountPrice,
		"offer":           doc.Offer,
		"parking":         doc.Parking,
		"furnished":       doc.Furnished,
		"updated_at":      doc.UpdatedAt,
	}})
	if err != nil {
		r.logger.Errorf("ListingRepository.Update: UpdateByID failed for %s: %v", listing.ID, err)
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrListingNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		r.logger.Errorf("ListingRepository.Delete: DeleteOne failed for %s: %v", id, err)
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrListingNotFound
	}

	var doc listingDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrListingNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainListing(&doc), nil
}

func (r *ListingRepository) FindAll(ctx context.Context, ownerID string) ([]*domain.Listing, error) {
	filter := bson.M{}
	if ownerID != "" {
		filter["user_ref"] = ownerID
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []*listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return toDomainListings(docs), nil
}

// PushImages appends the given blob ids to the listing's image list in one
// update, preserving duplicates. Concurrent pushes interleave at the database
// without losing either side's ids.
func (r *ListingRepository) PushImages(ctx context.Context, id string, imageIDs []string) (*domain.Listing, error) {
	return r.mutateImages(ctx, id, bson.M{
		"$push": bson.M{"images": bson.M{"$each": imageIDs}},
	})
}

// PullImages removes the given blob ids from the listing's image list
// (set difference).
func (r *ListingRepository) PullImages(ctx context.Context, id string, imageIDs []string) (*domain.Listing, error) {
	return r.mutateImages(ctx, id, bson.M{
		"$pull": bson.M{"images": bson.M{"$in": imageIDs}},
	})
}

func (r *ListingRepository) mutateImages(ctx context.Context, id string, update bson.M) (*domain.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrListingNotFound
	}

	if set, ok := update["$set"].(bson.M); ok {
		set["updated_at"] = time.Now().UTC()
	} else {
		update["$set"] = bson.M{"updated_at": time.Now().UTC()}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc listingDocument
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrListingNotFound
	}
	if err != nil {
		r.logger.Errorf("ListingRepository.mutateImages: FindOneAndUpdate failed for %s: %v", id, err)
		return nil, err
	}
	return toDomainListing(&doc), nil
}
