package services

import (
	"context"
	"time"

	"github.com/solrent/solrent/internal/config"
	"github.com/solrent/solrent/internal/models"
)

// A valid base58-encoded 32-byte public key for test fixtures.
const testMintAddress = "Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS"

// NewTestSecurityConfig returns the production limiter settings with a
// buffer small enough for eviction tests.
func NewTestSecurityConfig() config.SecurityConfig {
	return config.SecurityConfig{
		ListingSubmitMaxAttempts: 3,
		ListingSubmitWindow:      time.Minute,
		RentalSubmitMaxAttempts:  5,
		RentalSubmitWindow:       time.Minute,
		AuthMaxAttempts:          5,
		AuthWindow:               5 * time.Minute,
		EventBufferCapacity:      100,
		JanitorInterval:          5 * time.Minute,
	}
}

// NewTestListing returns an active listing with mid-range terms.
func NewTestListing(id, ownerID string) *models.Listing {
	return &models.Listing{
		ID:                 id,
		OwnerID:            ownerID,
		MintAddress:        testMintAddress,
		Name:               "Test NFT",
		Description:        "A test listing",
		DailyRentLamports:  models.LamportsPerSOL / 10,
		CollateralLamports: models.LamportsPerSOL,
		MinDurationSecs:    1 * models.SecondsPerDay,
		MaxDurationSecs:    30 * models.SecondsPerDay,
		Active:             true,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}
}

// NewTestUser returns a user fixture with the given identity fields.
func NewTestUser(id, email, displayName string) *models.User {
	return &models.User{
		ID:          id,
		Email:       email,
		DisplayName: displayName,
		Role:        "user",
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

// MockListingRepository implements ListingRepository for testing
type MockListingRepository struct {
	GetByIDFunc          func(ctx context.Context, id string) (*models.Listing, error)
	GetByMintAddressFunc func(ctx context.Context, mintAddress string) (*models.Listing, error)
	ListActiveFunc       func(ctx context.Context, limit, offset int) ([]*models.Listing, error)
	ListByOwnerFunc      func(ctx context.Context, ownerID string) ([]*models.Listing, error)
	CreateFunc           func(ctx context.Context, listing *models.Listing) (*models.Listing, error)
	SetActiveFunc        func(ctx context.Context, id string, active bool) error
}

func (m *MockListingRepository) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockListingRepository) GetByMintAddress(ctx context.Context, mintAddress string) (*models.Listing, error) {
	if m.GetByMintAddressFunc != nil {
		return m.GetByMintAddressFunc(ctx, mintAddress)
	}
	return nil, models.ErrNotFound
}

func (m *MockListingRepository) ListActive(ctx context.Context, limit, offset int) ([]*models.Listing, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx, limit, offset)
	}
	return []*models.Listing{}, nil
}

func (m *MockListingRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Listing, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, ownerID)
	}
	return []*models.Listing{}, nil
}

func (m *MockListingRepository) Create(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, listing)
	}
	return nil, models.ErrInternalServer
}

func (m *MockListingRepository) SetActive(ctx context.Context, id string, active bool) error {
	if m.SetActiveFunc != nil {
		return m.SetActiveFunc(ctx, id, active)
	}
	return nil
}

// MockRentalRepository implements RentalRepository for testing
type MockRentalRepository struct {
	GetByIDFunc                  func(ctx context.Context, id string) (*models.Rental, error)
	ListByRenterFunc             func(ctx context.Context, renterID string) ([]*models.Rental, error)
	CreateWithListingLockFunc    func(ctx context.Context, rental *models.Rental) (*models.Rental, error)
	ReturnWithListingReleaseFunc func(ctx context.Context, rentalID, listingID string) error
}

func (m *MockRentalRepository) GetByID(ctx context.Context, id string) (*models.Rental, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockRentalRepository) ListByRenter(ctx context.Context, renterID string) ([]*models.Rental, error) {
	if m.ListByRenterFunc != nil {
		return m.ListByRenterFunc(ctx, renterID)
	}
	return []*models.Rental{}, nil
}

func (m *MockRentalRepository) CreateWithListingLock(ctx context.Context, rental *models.Rental) (*models.Rental, error) {
	if m.CreateWithListingLockFunc != nil {
		return m.CreateWithListingLockFunc(ctx, rental)
	}
	return nil, models.ErrInternalServer
}

func (m *MockRentalRepository) ReturnWithListingRelease(ctx context.Context, rentalID, listingID string) error {
	if m.ReturnWithListingReleaseFunc != nil {
		return m.ReturnWithListingReleaseFunc(ctx, rentalID, listingID)
	}
	return nil
}

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc    func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*models.User, error)
	CreateFunc     func(ctx context.Context, user *models.User) (*models.User, error)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}
