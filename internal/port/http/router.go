package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/propview/realty-service/internal/platform/logger"
	"github.com/propview/realty-service/internal/port/http/handler"
	"github.com/propview/realty-service/internal/port/http/middleware"
)

// NewRouter wires all API routes. Auth endpoints are public; every listing
// route, the image fetch included, sits behind the JWT middleware.
func NewRouter(
	authHandler *handler.AuthHandler,
	listingHandler *handler.ListingHandler,
	jwtSecret string,
	log logger.Logger,
) *chi.Mux {
	mux := chi.NewRouter()

	mux.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Server is running..."))
	})

	mux.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.HandleSignup)
		r.Post("/login", authHandler.HandleLogin)
		r.Get("/verify", authHandler.HandleVerify)
		r.Post("/forgot-password", authHandler.HandleForgotPassword)
		r.Post("/reset-password", authHandler.HandleResetPassword)
	})

	mux.Route("/api/listings", func(r chi.Router) {
		r.Use(middleware.JWTAuth(jwtSecret, log))

		r.Post("/", listingHandler.HandleCreateListing)
		r.Get("/", listingHandler.HandleGetListings)
		r.Get("/image/{id}", listingHandler.HandleGetImage)
		r.Get("/{id}", listingHandler.HandleGetListing)
		r.Put("/{id}", listingHandler.HandleUpdateListing)
		r.Delete("/{id}", listingHandler.HandleDeleteListing)
		r.Post("/{listingId}/upload-images", listingHandler.HandleUploadImages)
		r.Delete("/{listingId}/images", listingHandler.HandleDeleteImages)
	})

	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"statusCode":404,"message":"Route Not Found"}`))
	})

	return mux
}
