package domain

import "time"

type ListingType string

const (
	TypeSale ListingType = "sale"
	TypeRent ListingType = "rent"
)

// Roles carried in the JWT issued by the auth endpoints. Sellers only see
// their own listings when listing; every other role sees everything.
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
)

// Principal is the authenticated actor attached to the request by the JWT
// middleware. It is trusted as-is by the usecases and never re-verified there.
type Principal struct {
	UserID string
	Role   string
	Name   string
	Email  string
}

type Listing struct {
	ID            string
	Name          string
	Description   string
	Address       string
	Type          ListingType
	Bedrooms      int
	Bathrooms     int
	SquareFootage int
	ContactNumber string
	RegularPrice  int64
	DiscountPrice int64
	Offer         bool
	Parking       bool
	Furnished     bool
	UserRef       string
	Images        []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ListingInput carries the mutable scalar fields of a listing. The owner
// reference, id, images and timestamps are managed by the usecases and the
// repository, never by clients.
type ListingInput struct {
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Address       string      `json:"address"`
	Type          ListingType `json:"type"`
	Bedrooms      int         `json:"bedrooms"`
	Bathrooms     int         `json:"bathrooms"`
	SquareFootage int         `json:"squareFootage"`
	ContactNumber string      `json:"contactNumber"`
	RegularPrice  int64       `json:"regularPrice"`
	DiscountPrice int64       `json:"discountPrice"`
	Offer         bool        `json:"offer"`
	Parking       bool        `json:"parking"`
	Furnished     bool        `json:"furnished"`
}

// Image is a stored blob's metadata as seen by callers. Content is streamed
// separately; chunk boundaries are invisible outside the store.
type Image struct {
	ID          string
	Filename    string
	ContentType string
	Length      int64
	ListingID   string
	UploadedAt  time.Time
}
