package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/solrent/solrent/internal/auth"
	"github.com/solrent/solrent/internal/models"
	"github.com/solrent/solrent/internal/services"
	pkghttp "github.com/solrent/solrent/pkg/http"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListingServiceInterface defines the interface for listing business logic
type ListingServiceInterface interface {
	Create(ctx context.Context, ownerID string, input services.CreateListingInput) (*models.Listing, error)
	ToggleActive(ctx context.Context, listingID, callerID string) (*models.Listing, error)
	ListActive(ctx context.Context, limit, offset int) ([]*models.Listing, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Listing, error)
	Get(ctx context.Context, id string) (*models.Listing, error)
}

// ListingHandler handles listing-related HTTP requests
type ListingHandler struct {
	service ListingServiceInterface
}

// NewListingHandler creates a new ListingHandler
func NewListingHandler(service ListingServiceInterface) *ListingHandler {
	return &ListingHandler{service: service}
}

// CreateListingRequest represents the request body for creating a listing.
// Amounts are lamports; durations are whole days.
type CreateListingRequest struct {
	MintAddress        string `json:"mint_address" validate:"required,len=44"`
	Name               string `json:"name" validate:"required,min=1"`
	Description        string `json:"description"`
	ImageURL           string `json:"image_url" validate:"omitempty,url"`
	DailyRentLamports  int64  `json:"daily_rent_lamports" validate:"required,gt=0"`
	CollateralLamports int64  `json:"collateral_lamports" validate:"required,gt=0"`
	MinDurationDays    int    `json:"min_duration_days" validate:"required,gte=1"`
	MaxDurationDays    int    `json:"max_duration_days" validate:"required,gte=1"`
}

// ListingResponse represents a listing in HTTP responses
type ListingResponse struct {
	ID                 string  `json:"id"`
	OwnerID            string  `json:"owner_id"`
	MintAddress        string  `json:"mint_address"`
	Name               string  `json:"name"`
	Description        string  `json:"description,omitempty"`
	ImageURL           string  `json:"image_url,omitempty"`
	DailyRentLamports  int64   `json:"daily_rent_lamports"`
	CollateralLamports int64   `json:"collateral_lamports"`
	MinDurationDays    int     `json:"min_duration_days"`
	MaxDurationDays    int     `json:"max_duration_days"`
	Active             bool    `json:"active"`
	CurrentRentalID    *string `json:"current_rental_id,omitempty"`
	CreatedAt          string  `json:"created_at"`
}

func toListingResponse(l *models.Listing) *ListingResponse {
	return &ListingResponse{
		ID:                 l.ID,
		OwnerID:            l.OwnerID,
		MintAddress:        l.MintAddress,
		Name:               l.Name,
		Description:        l.Description,
		ImageURL:           l.ImageURL,
		DailyRentLamports:  l.DailyRentLamports,
		CollateralLamports: l.CollateralLamports,
		MinDurationDays:    l.MinDurationDays(),
		MaxDurationDays:    l.MaxDurationDays(),
		Active:             l.Active,
		CurrentRentalID:    l.CurrentRentalID,
		CreatedAt:          l.CreatedAt.Format(time.RFC3339),
	}
}

func toListingResponses(listings []*models.Listing) []*ListingResponse {
	out := make([]*ListingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, toListingResponse(l))
	}
	return out
}

// Create handles POST /listings
func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	listing, err := h.service.Create(r.Context(), claims.UserID, services.CreateListingInput{
		MintAddress:        req.MintAddress,
		Name:               req.Name,
		Description:        req.Description,
		ImageURL:           req.ImageURL,
		DailyRentLamports:  req.DailyRentLamports,
		CollateralLamports: req.CollateralLamports,
		MinDurationDays:    req.MinDurationDays,
		MaxDurationDays:    req.MaxDurationDays,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, toListingResponse(listing))
}

// List handles GET /listings with limit/offset pagination
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parsePositiveInt(r.URL.Query().Get("limit"), defaultPageSize, maxPageSize)
	offset := parsePositiveInt(r.URL.Query().Get("offset"), 0, 1<<30)

	listings, err := h.service.ListActive(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"listings": toListingResponses(listings),
		"limit":    limit,
		"offset":   offset,
	})
}

// Get handles GET /listings/{id}
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	listing, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, toListingResponse(listing))
}

// ToggleActive handles POST /listings/{id}/toggle
func (h *ListingHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")

	listing, err := h.service.ToggleActive(r.Context(), id, claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, toListingResponse(listing))
}

// ListMine handles GET /my/listings
func (h *ListingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	listings, err := h.service.ListByOwner(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"listings": toListingResponses(listings),
	})
}

func parsePositiveInt(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	if n > max {
		return max
	}
	return n
}
