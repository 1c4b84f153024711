package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/solrent/solrent/internal/auth"
	"github.com/solrent/solrent/internal/handlers"
	"github.com/solrent/solrent/internal/middleware"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	listingHandler *handlers.ListingHandler,
	rentalHandler *handlers.RentalHandler,
	securityHandler *handlers.SecurityHandler,
	tokenManager *auth.TokenManager,
) {
	authRateLimit := middleware.DefaultAuthRateLimit()
	apiRateLimit := middleware.DefaultAPIRateLimit()

	// Public routes
	router.With(middleware.RateLimitByIP(authRateLimit)).Post("/auth/register", authHandler.Register)
	router.With(middleware.RateLimitByIP(authRateLimit)).Post("/auth/login", authHandler.Login)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(apiRateLimit))
		r.Get("/listings", listingHandler.List)
		r.Get("/listings/{id}", listingHandler.Get)
	})

	router.Handle("/metrics", promhttp.Handler())

	// Protected routes
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(tokenManager))
		r.Use(middleware.RateLimitByIP(apiRateLimit))

		r.Post("/listings", listingHandler.Create)
		r.Post("/listings/{id}/toggle", listingHandler.ToggleActive)
		r.Get("/my/listings", listingHandler.ListMine)

		r.Post("/rentals", rentalHandler.Create)
		r.Post("/rentals/{id}/return", rentalHandler.Return)
		r.Get("/my/rentals", rentalHandler.ListMine)

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole("admin"))
			r.Get("/security/events", securityHandler.ListEvents)
		})
	})
}
