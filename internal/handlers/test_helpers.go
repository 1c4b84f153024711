package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/solrent/solrent/internal/auth"
	"github.com/solrent/solrent/internal/models"
	"github.com/solrent/solrent/internal/services"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with a JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithAuthContext adds user claims to the request context for testing
// authenticated endpoints
func WithAuthContext(req *http.Request, userID, email, role string) *http.Request {
	claims := &auth.TokenClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
	}
	ctx := context.WithValue(req.Context(), auth.UserContextKey, claims)
	return req.WithContext(ctx)
}

// WithURLParam adds a chi route parameter to the request context
func WithURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// AssertJSONResponse checks the status code and decodes the JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	t.Helper()
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	if target != nil {
		assert.NoError(t, json.NewDecoder(w.Body).Decode(target))
	}
}

// MockListingService implements ListingServiceInterface for testing
type MockListingService struct {
	CreateFunc       func(ctx context.Context, ownerID string, input services.CreateListingInput) (*models.Listing, error)
	ToggleActiveFunc func(ctx context.Context, listingID, callerID string) (*models.Listing, error)
	ListActiveFunc   func(ctx context.Context, limit, offset int) ([]*models.Listing, error)
	ListByOwnerFunc  func(ctx context.Context, ownerID string) ([]*models.Listing, error)
	GetFunc          func(ctx context.Context, id string) (*models.Listing, error)
}

func (m *MockListingService) Create(ctx context.Context, ownerID string, input services.CreateListingInput) (*models.Listing, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, ownerID, input)
	}
	return nil, models.ErrInternalServer
}

func (m *MockListingService) ToggleActive(ctx context.Context, listingID, callerID string) (*models.Listing, error) {
	if m.ToggleActiveFunc != nil {
		return m.ToggleActiveFunc(ctx, listingID, callerID)
	}
	return nil, models.ErrInternalServer
}

func (m *MockListingService) ListActive(ctx context.Context, limit, offset int) ([]*models.Listing, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx, limit, offset)
	}
	return []*models.Listing{}, nil
}

func (m *MockListingService) ListByOwner(ctx context.Context, ownerID string) ([]*models.Listing, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, ownerID)
	}
	return []*models.Listing{}, nil
}

func (m *MockListingService) Get(ctx context.Context, id string) (*models.Listing, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

// MockRentalService implements RentalServiceInterface for testing
type MockRentalService struct {
	CreateFunc       func(ctx context.Context, listingID string, durationDays int, renterID string) (*models.Rental, error)
	ReturnFunc       func(ctx context.Context, rentalID, callerID string) error
	ListByRenterFunc func(ctx context.Context, renterID string) ([]*models.Rental, error)
}

func (m *MockRentalService) Create(ctx context.Context, listingID string, durationDays int, renterID string) (*models.Rental, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, listingID, durationDays, renterID)
	}
	return nil, models.ErrInternalServer
}

func (m *MockRentalService) Return(ctx context.Context, rentalID, callerID string) error {
	if m.ReturnFunc != nil {
		return m.ReturnFunc(ctx, rentalID, callerID)
	}
	return nil
}

func (m *MockRentalService) ListByRenter(ctx context.Context, renterID string) ([]*models.Rental, error) {
	if m.ListByRenterFunc != nil {
		return m.ListByRenterFunc(ctx, renterID)
	}
	return []*models.Rental{}, nil
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	RegisterFunc func(ctx context.Context, email, password, displayName, walletAddress string) (*services.AuthResponse, error)
	LoginFunc    func(ctx context.Context, email, password string) (*services.AuthResponse, error)
}

func (m *MockAuthService) Register(ctx context.Context, email, password, displayName, walletAddress string) (*services.AuthResponse, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, email, password, displayName, walletAddress)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*services.AuthResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, models.ErrUnauthorized
}
