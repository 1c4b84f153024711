package integration

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/solrent/solrent/internal/config"
	"github.com/solrent/solrent/internal/escrow"
	"github.com/solrent/solrent/internal/models"
	"github.com/solrent/solrent/internal/repositories"
	"github.com/solrent/solrent/internal/security"
	"github.com/solrent/solrent/internal/services"
	pkgauth "github.com/solrent/solrent/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMint = "Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS"

type marketplaceEnv struct {
	db       *TestDB
	users    *repositories.UserRepository
	listings *services.ListingService
	rentals  *services.RentalService
}

func setupMarketplace(t *testing.T) *marketplaceEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	db, err := SetupTestDatabase(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { db.Teardown(context.Background()) })

	logger := slog.Default()
	monitor := security.NewMonitor(logger)
	limiter := security.NewRateLimiter()
	escrowClient := escrow.NewSimulatedClient("11111111111111111111111111111111", logger)
	// Generous limits so test volume never trips the fixed window.
	cfg := config.SecurityConfig{
		ListingSubmitMaxAttempts: 1000,
		ListingSubmitWindow:      time.Minute,
		RentalSubmitMaxAttempts:  1000,
		RentalSubmitWindow:       time.Minute,
		AuthMaxAttempts:          1000,
		AuthWindow:               time.Minute,
	}

	listingRepo := repositories.NewListingRepository(db.DB)
	rentalRepo := repositories.NewRentalRepository(db.DB)

	return &marketplaceEnv{
		db:       db,
		users:    repositories.NewUserRepository(db.DB),
		listings: services.NewListingService(listingRepo, escrowClient, limiter, monitor, cfg, logger),
		rentals:  services.NewRentalService(rentalRepo, listingRepo, escrowClient, limiter, monitor, cfg, logger),
	}
}

func (env *marketplaceEnv) createUser(t *testing.T, suffix string) *models.User {
	t.Helper()
	hash, err := pkgauth.HashPassword("TestPassword123")
	require.NoError(t, err)

	user, err := env.users.Create(context.Background(), &models.User{
		Email:        fmt.Sprintf("test-%d-%s@example.com", time.Now().UnixNano(), suffix),
		PasswordHash: hash,
		DisplayName:  "Test " + suffix,
	})
	require.NoError(t, err)
	return user
}

func validListingInput() services.CreateListingInput {
	return services.CreateListingInput{
		MintAddress:        testMint,
		Name:               "Integration NFT",
		Description:        "Listed from the integration suite",
		DailyRentLamports:  models.LamportsPerSOL / 10,
		CollateralLamports: models.LamportsPerSOL,
		MinDurationDays:    1,
		MaxDurationDays:    30,
	}
}

func TestMarketplace_FullLifecycle(t *testing.T) {
	env := setupMarketplace(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	renter := env.createUser(t, "renter")

	// List
	listing, err := env.listings.Create(ctx, owner.ID, validListingInput())
	require.NoError(t, err)
	assert.True(t, listing.Active)

	// Rent
	rental, err := env.rentals.Create(ctx, listing.ID, 7, renter.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RentalStatusActive, rental.Status)

	// The listing is now off the market and bound to the rental.
	rented, err := env.listings.Get(ctx, listing.ID)
	require.NoError(t, err)
	assert.False(t, rented.Active)
	require.NotNil(t, rented.CurrentRentalID)
	assert.Equal(t, rental.ID, *rented.CurrentRentalID)

	// A second rental attempt conflicts.
	other := env.createUser(t, "other")
	_, err = env.rentals.Create(ctx, listing.ID, 3, other.ID)
	assert.ErrorIs(t, err, models.ErrAlreadyRented)

	// The owner cannot toggle while the rental is live.
	_, err = env.listings.ToggleActive(ctx, listing.ID, owner.ID)
	assert.ErrorIs(t, err, models.ErrCannotToggleWhileRented)

	// Return
	require.NoError(t, env.rentals.Return(ctx, rental.ID, renter.ID))

	// A second return is rejected with no state change.
	assert.ErrorIs(t, env.rentals.Return(ctx, rental.ID, renter.ID), models.ErrNotRented)

	// The listing is bookable again.
	released, err := env.listings.Get(ctx, listing.ID)
	require.NoError(t, err)
	assert.True(t, released.Active)
	assert.Nil(t, released.CurrentRentalID)

	_, err = env.rentals.Create(ctx, listing.ID, 2, other.ID)
	assert.NoError(t, err)
}

func TestMarketplace_ConcurrentRentalsSingleWinner(t *testing.T) {
	env := setupMarketplace(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	listing, err := env.listings.Create(ctx, owner.ID, validListingInput())
	require.NoError(t, err)

	const contenders = 8
	renters := make([]*models.User, contenders)
	for i := range renters {
		renters[i] = env.createUser(t, fmt.Sprintf("renter%d", i))
	}

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.rentals.Create(ctx, listing.ID, 5, renters[i].ID)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, models.ErrAlreadyRented)
		}
	}
	assert.Equal(t, 1, wins, "exactly one renter must win the race")
}

func TestMarketplace_OwnerToggleLifecycle(t *testing.T) {
	env := setupMarketplace(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	listing, err := env.listings.Create(ctx, owner.ID, validListingInput())
	require.NoError(t, err)

	// Deactivate, confirm it is not rentable, reactivate.
	toggled, err := env.listings.ToggleActive(ctx, listing.ID, owner.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Active)

	renter := env.createUser(t, "renter")
	_, err = env.rentals.Create(ctx, listing.ID, 3, renter.ID)
	assert.ErrorIs(t, err, models.ErrAlreadyRented)

	toggled, err = env.listings.ToggleActive(ctx, listing.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Active)
}
