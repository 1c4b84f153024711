package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/solrent/solrent/internal/auth"
	"github.com/solrent/solrent/internal/models"
	pkghttp "github.com/solrent/solrent/pkg/http"
)

// RentalServiceInterface defines the interface for rental business logic
type RentalServiceInterface interface {
	Create(ctx context.Context, listingID string, durationDays int, renterID string) (*models.Rental, error)
	Return(ctx context.Context, rentalID, callerID string) error
	ListByRenter(ctx context.Context, renterID string) ([]*models.Rental, error)
}

// RentalHandler handles rental-related HTTP requests
type RentalHandler struct {
	service RentalServiceInterface
}

// NewRentalHandler creates a new RentalHandler
func NewRentalHandler(service RentalServiceInterface) *RentalHandler {
	return &RentalHandler{service: service}
}

// CreateRentalRequest represents the request body for renting a listing
type CreateRentalRequest struct {
	ListingID    string `json:"listing_id" validate:"required,uuid4"`
	DurationDays int    `json:"duration_days" validate:"required,gte=1,lte=365"`
}

// RentalResponse represents a rental in HTTP responses
type RentalResponse struct {
	ID                 string `json:"id"`
	ListingID          string `json:"listing_id"`
	RenterID           string `json:"renter_id"`
	StartDate          string `json:"start_date"`
	EndDate            string `json:"end_date"`
	DurationDays       int    `json:"duration_days"`
	DailyRentLamports  int64  `json:"daily_rent_lamports"`
	CollateralLamports int64  `json:"collateral_lamports"`
	TotalCostLamports  int64  `json:"total_cost_lamports"`
	Status             string `json:"status"`
}

func toRentalResponse(r *models.Rental) *RentalResponse {
	return &RentalResponse{
		ID:                 r.ID,
		ListingID:          r.ListingID,
		RenterID:           r.RenterID,
		StartDate:          r.StartDate.Format(time.RFC3339),
		EndDate:            r.EndDate.Format(time.RFC3339),
		DurationDays:       r.DurationDays,
		DailyRentLamports:  r.DailyRentLamports,
		CollateralLamports: r.CollateralLamports,
		TotalCostLamports:  r.TotalCostLamports,
		Status:             r.Status,
	}
}

// Create handles POST /rentals
func (h *RentalHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req CreateRentalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	rental, err := h.service.Create(r.Context(), req.ListingID, req.DurationDays, claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, toRentalResponse(rental))
}

// Return handles POST /rentals/{id}/return
func (h *RentalHandler) Return(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")

	if err := h.service.Return(r.Context(), id, claims.UserID); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"status": models.RentalStatusReturned})
}

// ListMine handles GET /my/rentals
func (h *RentalHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	rentals, err := h.service.ListByRenter(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]*RentalResponse, 0, len(rentals))
	for _, rental := range rentals {
		out = append(out, toRentalResponse(rental))
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"rentals": out,
	})
}
