package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/solrent/solrent/internal/models"
	"github.com/stretchr/testify/assert"
)

// A fixed UUID for request bodies that must pass format validation.
const testListingID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"

func testRental(id, listingID, renterID string) *models.Rental {
	start := time.Now()
	return &models.Rental{
		ID:                 id,
		ListingID:          listingID,
		RenterID:           renterID,
		StartDate:          start,
		EndDate:            start.AddDate(0, 0, 7),
		DurationDays:       7,
		DailyRentLamports:  models.LamportsPerSOL / 10,
		CollateralLamports: models.LamportsPerSOL,
		TotalCostLamports:  7*(models.LamportsPerSOL/10) + models.LamportsPerSOL,
		Status:             models.RentalStatusActive,
	}
}

func TestCreateRental_Success(t *testing.T) {
	svc := &MockRentalService{
		CreateFunc: func(ctx context.Context, listingID string, durationDays int, renterID string) (*models.Rental, error) {
			assert.Equal(t, testListingID, listingID)
			assert.Equal(t, 7, durationDays)
			assert.Equal(t, "renter1", renterID)
			return testRental("rental456", listingID, renterID), nil
		},
	}
	handler := NewRentalHandler(svc)

	body := map[string]interface{}{"listing_id": testListingID, "duration_days": 7}
	req := WithAuthContext(NewTestRequest(t, "POST", "/rentals", body), "renter1", "renter@example.com", "user")
	w := httptest.NewRecorder()
	handler.Create(w, req)

	var resp RentalResponse
	AssertJSONResponse(t, w, http.StatusCreated, &resp)
	assert.Equal(t, "rental456", resp.ID)
	assert.Equal(t, models.RentalStatusActive, resp.Status)
}

func TestCreateRental_Unauthenticated(t *testing.T) {
	handler := NewRentalHandler(&MockRentalService{})

	body := map[string]interface{}{"listing_id": testListingID, "duration_days": 7}
	req := NewTestRequest(t, "POST", "/rentals", body)
	w := httptest.NewRecorder()
	handler.Create(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateRental_DurationBeyondYear(t *testing.T) {
	handler := NewRentalHandler(&MockRentalService{})

	body := map[string]interface{}{"listing_id": testListingID, "duration_days": 400}
	req := WithAuthContext(NewTestRequest(t, "POST", "/rentals", body), "renter1", "renter@example.com", "user")
	w := httptest.NewRecorder()
	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateRental_AlreadyRented(t *testing.T) {
	svc := &MockRentalService{
		CreateFunc: func(ctx context.Context, listingID string, durationDays int, renterID string) (*models.Rental, error) {
			return nil, models.ErrAlreadyRented
		},
	}
	handler := NewRentalHandler(svc)

	body := map[string]interface{}{"listing_id": testListingID, "duration_days": 7}
	req := WithAuthContext(NewTestRequest(t, "POST", "/rentals", body), "renter1", "renter@example.com", "user")
	w := httptest.NewRecorder()
	handler.Create(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestReturnRental_Success(t *testing.T) {
	returned := false
	svc := &MockRentalService{
		ReturnFunc: func(ctx context.Context, rentalID, callerID string) error {
			assert.Equal(t, "rental456", rentalID)
			assert.Equal(t, "renter1", callerID)
			returned = true
			return nil
		},
	}
	handler := NewRentalHandler(svc)

	req := WithAuthContext(NewTestRequest(t, "POST", "/rentals/rental456/return", nil), "renter1", "renter@example.com", "user")
	req = WithURLParam(req, "id", "rental456")
	w := httptest.NewRecorder()
	handler.Return(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, returned)
}

func TestReturnRental_NotRenter(t *testing.T) {
	svc := &MockRentalService{
		ReturnFunc: func(ctx context.Context, rentalID, callerID string) error {
			return models.ErrForbidden
		},
	}
	handler := NewRentalHandler(svc)

	req := WithAuthContext(NewTestRequest(t, "POST", "/rentals/rental456/return", nil), "other", "other@example.com", "user")
	req = WithURLParam(req, "id", "rental456")
	w := httptest.NewRecorder()
	handler.Return(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestReturnRental_AlreadyReturned(t *testing.T) {
	svc := &MockRentalService{
		ReturnFunc: func(ctx context.Context, rentalID, callerID string) error {
			return models.ErrNotRented
		},
	}
	handler := NewRentalHandler(svc)

	req := WithAuthContext(NewTestRequest(t, "POST", "/rentals/rental456/return", nil), "renter1", "renter@example.com", "user")
	req = WithURLParam(req, "id", "rental456")
	w := httptest.NewRecorder()
	handler.Return(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestListMyRentals(t *testing.T) {
	svc := &MockRentalService{
		ListByRenterFunc: func(ctx context.Context, renterID string) ([]*models.Rental, error) {
			return []*models.Rental{testRental("r1", testListingID, renterID)}, nil
		},
	}
	handler := NewRentalHandler(svc)

	req := WithAuthContext(NewTestRequest(t, "GET", "/my/rentals", nil), "renter1", "renter@example.com", "user")
	w := httptest.NewRecorder()
	handler.ListMine(w, req)

	var resp struct {
		Rentals []*RentalResponse `json:"rentals"`
	}
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Len(t, resp.Rentals, 1)
}
