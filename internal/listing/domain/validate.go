package domain

import (
	"regexp"
	"unicode/utf8"
)

// Field constraints mirror the listings collection schema. Create and update
// run the exact same set, so a record can never drift out of range through
// either path.
const (
	NameMinLen        = 10
	NameMaxLen        = 62
	DescriptionMinLen = 50
	AddressMinLen     = 15
	RoomsMin          = 1
	RoomsMax          = 6
	SquareFootageMin  = 500
	SquareFootageMax  = 10000
	RegularPriceMin   = 1_000_000
	RegularPriceMax   = 20_000_000
	DiscountPriceMax  = 20_000_000
)

var (
	nameRe    = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	contactRe = regexp.MustCompile(`^[0-9]{10}$`)
)

// Validate checks a listing input against every field constraint and returns
// a *ValidationError listing all violations, or nil when the input is clean.
func Validate(in ListingInput) error {
	verr := &ValidationError{}

	switch {
	case len(in.Name) < NameMinLen:
		verr.add("name", "name must be at least 10 characters")
	case len(in.Name) > NameMaxLen:
		verr.add("name", "name must be at most 62 characters")
	case !nameRe.MatchString(in.Name):
		verr.add("name", "name can only contain letters and spaces")
	}

	// Minimums count characters, not bytes, so multibyte text is measured the
	// way users see it.
	if utf8.RuneCountInString(in.Description) < DescriptionMinLen {
		verr.add("description", "description must be at least 50 characters")
	}
	if utf8.RuneCountInString(in.Address) < AddressMinLen {
		verr.add("address", "address must be at least 15 characters")
	}
	if in.Type != TypeSale && in.Type != TypeRent {
		verr.add("type", "type must be either 'sale' or 'rent'")
	}
	if in.Bedrooms < RoomsMin || in.Bedrooms > RoomsMax {
		verr.add("bedrooms", "bedrooms must be between 1 and 6")
	}
	if in.Bathrooms < RoomsMin || in.Bathrooms > RoomsMax {
		verr.add("bathrooms", "bathrooms must be between 1 and 6")
	}
	if in.SquareFootage < SquareFootageMin || in.SquareFootage > SquareFootageMax {
		verr.add("squareFootage", "square footage must be between 500 and 10000")
	}
	if !contactRe.MatchString(in.ContactNumber) {
		verr.add("contactNumber", "please enter a valid 10-digit phone number")
	}
	if in.RegularPrice < RegularPriceMin || in.RegularPrice > RegularPriceMax {
		verr.add("regularPrice", "regular price must be between 1000000 and 20000000")
	}
	if in.DiscountPrice != 0 {
		if in.DiscountPrice < 0 || in.DiscountPrice > DiscountPriceMax {
			verr.add("discountPrice", "discount price must be between 0 and 20000000")
		} else if in.DiscountPrice >= in.RegularPrice {
			verr.add("discountPrice", "discount price must be less than regular price")
		}
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}
