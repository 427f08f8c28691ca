package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/propview/realty-service/internal/listing/domain"
	"github.com/propview/realty-service/internal/listing/usecase"
	"github.com/propview/realty-service/internal/platform/logger"
	"github.com/propview/realty-service/internal/port/http/middleware"
)

// Upload limits enforced before anything reaches the object store.
const (
	maxFileSize    = 5 << 20 // 5 MiB per file
	maxUploadFiles = 6

	// Whole-request cap: the per-file and file-count limits plus room for
	// multipart framing. Oversized requests abort mid-stream instead of
	// spooling to disk first.
	maxUploadRequestSize = maxUploadFiles*maxFileSize + 1<<20
)

type ListingService interface {
	CreateListing(ctx context.Context, principal domain.Principal, in domain.ListingInput) (*domain.Listing, error)
	ListListings(ctx context.Context, principal domain.Principal, baseURL string) ([]*domain.Listing, error)
	GetListing(ctx context.Context, id, baseURL string) (*domain.Listing, error)
	UpdateListing(ctx context.Context, id string, in domain.ListingInput) (*domain.Listing, error)
	DeleteListing(ctx context.Context, id string) error
	UploadImages(ctx context.Context, listingID string, files []usecase.Upload) ([]string, *domain.Listing, error)
	DetachImages(ctx context.Context, listingID string, blobIDs []string) (*domain.Listing, error)
	FetchImage(ctx context.Context, blobID string) (io.ReadCloser, *domain.Image, error)
}

type ListingHandler struct {
	service ListingService
	logger  logger.Logger
}

func NewListingHandler(service ListingService, log logger.Logger) *ListingHandler {
	return &ListingHandler{service: service, logger: log}
}

type listingView struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Address       string             `json:"address"`
	Type          domain.ListingType `json:"type"`
	Bedrooms      int                `json:"bedrooms"`
	Bathrooms     int                `json:"bathrooms"`
	SquareFootage int                `json:"squareFootage"`
	ContactNumber string             `json:"contactNumber"`
	RegularPrice  int64              `json:"regularPrice"`
	DiscountPrice int64              `json:"discountPrice,omitempty"`
	Offer         bool               `json:"offer"`
	Parking       bool               `json:"parking"`
	Furnished     bool               `json:"furnished"`
	UserRef       string             `json:"userRef"`
	Images        []string           `json:"images"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

func toListingView(l *domain.Listing) listingView {
	return listingView{
		ID:            l.ID,
		Name:          l.Name,
		Description:   l.Description,
		Address:       l.Address,
		Type:          l.Type,
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
	}
}

func toListingViews(listings []*domain.Listing) []listingView {
	views := make([]listingView, 0, len(listings))
	for _, l := range listings {
		views = append(views, toListingView(l))
	}
	return views
}

func (h *ListingHandler) HandleCreateListing(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"success": false, "message": "Unauthorized"})
		return
	}

	var in domain.ListingInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "Invalid request body"})
		return
	}

	listing, err := h.service.CreateListing(r.Context(), principal, in)
	if err != nil {
		h.respondListingError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":   true,
		"message":   "Listing created successfully",
		"listingId": listing.ID,
		"listing":   toListingView(listing),
	})
}

func (h *ListingHandler) HandleGetListings(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())

	listings, err := h.service.ListListings(r.Context(), principal, baseURL(r))
	if err != nil {
		h.respondListingError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"message":  "Listings retrieved successfully",
		"listings": toListingViews(listings),
	})
}

func (h *ListingHandler) HandleGetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.service.GetListing(r.Context(), chi.URLParam(r, "id"), baseURL(r))
	if err != nil {
		h.respondListingError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Listing retrieved successfully",
		"listing": toListingView(listing),
	})
}

func (h *ListingHandler) HandleUpdateListing(w http.ResponseWriter, r *http.Request) {
	var in domain.ListingInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "Invalid request body"})
		return
	}

	listing, err := h.service.UpdateListing(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.respondListingError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Listing updated successfully",
		"listing": toListingView(listing),
	})
}

func (h *ListingHandler) HandleDeleteListing(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteListing(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondListingError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Listing deleted successfully",
	})
}

// HandleUploadImages reads the multipart field "images", enforces the per-file
// size cap, file count cap and image/* MIME restriction, then hands the
// streams to the usecase.
func (h *ListingHandler) HandleUploadImages(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listingId")

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadRequestSize)
	if err := r.ParseMultipartForm(maxFileSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]interface{}{"success": false, "message": "Upload exceeds the allowed request size"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "Invalid multipart request"})
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	headers := r.MultipartForm.File["images"]
	if len(headers) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "No files uploaded"})
		return
	}
	if len(headers) > maxUploadFiles {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "Too many files, at most 6 allowed"})
		return
	}

	files := make([]usecase.Upload, 0, len(headers))
	var opened []multipart.File
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()

	for _, header := range headers {
		if header.Size > maxFileSize {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "File exceeds the 5MB limit"})
			return
		}
		contentType := header.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "Only image files are allowed"})
			return
		}

		file, err := header.Open()
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "message": "Failed to read uploaded file"})
			return
		}
		opened = append(opened, file)
		files = append(files, usecase.Upload{
			Reader:      file,
			Filename:    header.Filename,
			ContentType: contentType,
		})
	}

	fileIDs, listing, err := h.service.UploadImages(r.Context(), listingID, files)
	if err != nil {
		h.respondListingError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Images uploaded successfully",
		"fileIds": fileIDs,
		"listing": toListingView(listing),
	})
}

func (h *ListingHandler) HandleDeleteImages(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listingId")

	var body struct {
		ImageIDs []string `json:"imageIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.ImageIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "Image IDs array is required"})
		return
	}

	listing, err := h.service.DetachImages(r.Context(), listingID, body.ImageIDs)
	if err != nil {
		h.respondListingError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Images deleted successfully",
		"listing": toListingView(listing),
	})
}

// HandleGetImage streams a stored blob. A read failure after the header is
// flushed terminates the response body; the already-sent status cannot
// change at that point.
func (h *ListingHandler) HandleGetImage(w http.ResponseWriter, r *http.Request) {
	rc, img, err := h.service.FetchImage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidImageID):
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid image ID"})
		case errors.Is(err, domain.ErrImageNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Image not found"})
		default:
			h.logger.Errorf("HandleGetImage: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Error fetching image"})
		}
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", img.ContentType)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warnf("HandleGetImage: stream aborted for %s: %v", img.ID, err)
	}
}

func (h *ListingHandler) respondListingError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Validation failed",
			"errors":  verr.Fields,
		})
	case errors.Is(err, domain.ErrListingNotFound):
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "message": "Listing not found"})
	case errors.Is(err, domain.ErrNoImages):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "No files uploaded"})
	case errors.Is(err, domain.ErrInvalidImageID):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": "Invalid image ID"})
	default:
		h.logger.Errorf("listing handler: unexpected error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "message": "Internal Server Error"})
	}
}
