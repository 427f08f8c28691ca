package mongodb

import (
	"fmt"
	"time"

	"github.com/propview/realty-service/internal/listing/domain"
	userdomain "github.com/propview/realty-service/internal/user/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// listingDocument is the persisted shape of a listing. Image ids are stored
// as plain strings so legacy URL entries from the previous storage scheme
// survive round trips untouched.
type listingDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	Description   string             `bson:"description"`
	Address       string             `bson:"address"`
	Type          string             `bson:"type"`
	Bedrooms      int                `bson:"bedrooms"`
	Bathrooms     int                `bson:"bathrooms"`
	SquareFootage int                `bson:"square_footage"`
	ContactNumber string             `bson:"contact_number"`
	RegularPrice  int64              `bson:"regular_price"`
	DiscountPrice int64              `bson:"discount_price,omitempty"`
	Offer         bool               `bson:"offer"`
	Parking       bool               `bson:"parking"`
	Furnished     bool               `bson:"furnished"`
	UserRef       string             `bson:"user_ref"`
	Images        []string           `bson:"images"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	Phone        string             `bson:"phone"`
	PasswordHash string             `bson:"password_hash"`
	Role         string             `bson:"role"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func toListingDocument(l *domain.Listing) (*listingDocument, error) {
	if l == nil {
		return nil, nil
	}

	docID := primitive.NilObjectID
	if l.ID != "" {
		var err error
		docID, err = primitive.ObjectIDFromHex(l.ID)
		if err != nil {
			return nil, fmt.Errorf("toListingDocument: invalid id %q: %w", l.ID, err)
		}
	}

	return &listingDocument{
		ID:            docID,
		Name:          l.Name,
		Description:   l.Description,
		Address:       l.Address,
		Type:          string(l.Type),
		Bedrooms:      l.Bedrooms,
		Bathrooms:     l.Bathrooms,
		SquareFootage: l.SquareFootage,
		ContactNumber: l.ContactNumber,
		RegularPrice:  l.RegularPrice,
		DiscountPrice: l.DiscountPrice,
		Offer:         l.Offer,
		Parking:       l.Parking,
		Furnished:     l.Furnished,
		UserRef:       l.UserRef,
		Images:        l.Images,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}, nil
}

func toDomainListing(d *listingDocument) *domain.Listing {
	if d == nil {
		return nil
	}
	images := d.Images
	if images == nil {
		images = []string{}
	}
	return &domain.Listing{
		ID:            d.ID.Hex(),
		Name:          d.Name,
		Description:   d.Description,
		Address:       d.Address,
		Type:          domain.ListingType(d.Type),
		Bedrooms:      d.Bedrooms,
		Bathrooms:     d.Bathrooms,
		SquareFootage: d.SquareFootage,
		ContactNumber: d.ContactNumber,
		RegularPrice:  d.RegularPrice,
		DiscountPrice: d.DiscountPrice,
		Offer:         d.Offer,
		Parking:       d.Parking,
		Furnished:     d.Furnished,
		UserRef:       d.UserRef,
		Images:        images,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func toDomainListings(docs []*listingDocument) []*domain.Listing {
	listings := make([]*domain.Listing, 0, len(docs))
	for _, doc := range docs {
		listings = append(listings, toDomainListing(doc))
	}
	return listings
}

func toUserDocument(u *userdomain.User) (*userDocument, error) {
	if u == nil {
		return nil, nil
	}

	docID := primitive.NilObjectID
	if u.ID != "" {
		var err error
		docID, err = primitive.ObjectIDFromHex(u.ID)
		if err != nil {
			return nil, fmt.Errorf("toUserDocument: invalid id %q: %w", u.ID, err)
		}
	}

	return &userDocument{
		ID:           docID,
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}, nil
}

func toDomainUser(d *userDocument) *userdomain.User {
	if d == nil {
		return nil
	}
	return &userdomain.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		Phone:        d.Phone,
		PasswordHash: d.PasswordHash,
		Role:         d.Role,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
