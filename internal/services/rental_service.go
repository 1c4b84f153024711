package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/solrent/solrent/internal/config"
	"github.com/solrent/solrent/internal/escrow"
	"github.com/solrent/solrent/internal/metrics"
	"github.com/solrent/solrent/internal/models"
	"github.com/solrent/solrent/internal/security"
	"github.com/solrent/solrent/internal/validation"
	pkglogger "github.com/solrent/solrent/pkg/logger"
)

// Rate-limit key for rental submissions, scoped per user.
const rentalSubmitKey = "nft-rental-submit"

// Oversight thresholds: rentals beyond these are logged for review but not
// blocked.
const (
	oversightDurationDays = 90
	oversightCostLamports = int64(100) * models.LamportsPerSOL
)

// RentalRepository defines the record-store operations the rental lifecycle
// needs. The two compound operations are transactional: both row changes
// apply or neither does.
type RentalRepository interface {
	GetByID(ctx context.Context, id string) (*models.Rental, error)
	ListByRenter(ctx context.Context, renterID string) ([]*models.Rental, error)
	CreateWithListingLock(ctx context.Context, rental *models.Rental) (*models.Rental, error)
	ReturnWithListingRelease(ctx context.Context, rentalID, listingID string) error
}

// RentalService drives the rental lifecycle: Active -> Returned, one
// direction only, with the owning listing flipped in the same transaction.
type RentalService struct {
	rentals  RentalRepository
	listings ListingRepository
	escrow   escrow.Client
	limiter  *security.RateLimiter
	monitor  *security.Monitor
	cfg      config.SecurityConfig
	logger   *slog.Logger
	now      func() time.Time
}

// NewRentalService creates a RentalService.
func NewRentalService(
	rentals RentalRepository,
	listings ListingRepository,
	escrowClient escrow.Client,
	limiter *security.RateLimiter,
	monitor *security.Monitor,
	cfg config.SecurityConfig,
	logger *slog.Logger,
) *RentalService {
	return &RentalService{
		rentals:  rentals,
		listings: listings,
		escrow:   escrowClient,
		limiter:  limiter,
		monitor:  monitor,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Create rents a listing for durationDays. The listing's terms are
// snapshotted into the rental so later listing edits never change it, and
// the listing is flipped to rented under a compare-and-set: a race between
// two renters leaves exactly one rental.
func (s *RentalService) Create(ctx context.Context, listingID string, durationDays int, renterID string) (*models.Rental, error) {
	allowed, _ := s.limiter.Check(
		rentalSubmitKey+":"+renterID,
		s.cfg.RentalSubmitMaxAttempts,
		s.cfg.RentalSubmitWindow,
	)
	if !allowed {
		s.monitor.LogRateLimitExceeded(rentalSubmitKey, renterID, s.cfg.RentalSubmitMaxAttempts)
		metrics.RateLimitRejections.WithLabelValues(rentalSubmitKey).Inc()
		return nil, models.ErrRateLimited
	}

	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if !listing.Active {
		return nil, models.ErrAlreadyRented
	}

	minDays := listing.MinDurationDays()
	maxDays := listing.MaxDurationDays()
	if result := validation.ValidateNumericRange(float64(durationDays), float64(minDays), float64(maxDays), "rental duration"); !result.Valid {
		s.monitor.LogValidationError("durationDays", result.Err, renterID, fmt.Sprint(durationDays))
		metrics.ValidationFailures.WithLabelValues("create_rental", "durationDays").Inc()
		return nil, models.NewValidationError("durationDays", result.Err)
	}

	totalCost := listing.DailyRentLamports*int64(durationDays) + listing.CollateralLamports

	// Unusual-pattern oversight: logged, never blocking.
	if durationDays > oversightDurationDays {
		s.monitor.LogValidationError("durationDays", "unusually long rental period requested", renterID, fmt.Sprint(durationDays))
	}
	if totalCost > oversightCostLamports {
		s.monitor.LogValidationError("totalCost", "high value transaction attempted", renterID, fmt.Sprint(totalCost))
	}

	callResult, err := s.escrow.Rent(ctx, listing.MintAddress, durationDays)
	if err != nil {
		s.logger.Error("escrow rent call failed",
			slog.String("listing_id", listingID),
			slog.String("mint_address", pkglogger.ShortAddress(listing.MintAddress)),
			slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", models.ErrEscrowCallFailed, err)
	}

	start := s.now()
	rental := &models.Rental{
		ListingID:          listingID,
		RenterID:           renterID,
		StartDate:          start,
		EndDate:            start.AddDate(0, 0, durationDays),
		DurationDays:       durationDays,
		DailyRentLamports:  listing.DailyRentLamports,
		CollateralLamports: listing.CollateralLamports,
		TotalCostLamports:  totalCost,
	}

	created, err := s.rentals.CreateWithListingLock(ctx, rental)
	if err != nil {
		s.logger.Warn("rental creation failed",
			slog.String("listing_id", listingID),
			slog.String("renter_id", renterID),
			slog.Any("error", err))
		return nil, err
	}

	metrics.RentalsCreated.Inc()
	s.logger.Info("rental created",
		slog.String("rental_id", created.ID),
		slog.String("listing_id", listingID),
		slog.String("renter_id", renterID),
		slog.Int("duration_days", durationDays),
		slog.Int64("total_cost_lamports", totalCost),
		slog.Bool("escrow_simulated", callResult.Simulated),
	)
	return created, nil
}

// Return marks an active rental returned and reactivates its listing. Only
// the renter may return; returning an already-returned rental reports
// ErrNotRented with no state change. The rental is not marked returned
// unless the escrow refund call itself reports success (or a simulated
// success, which is surfaced in the logs rather than silently trusted).
func (s *RentalService) Return(ctx context.Context, rentalID, callerID string) error {
	rental, err := s.rentals.GetByID(ctx, rentalID)
	if err != nil {
		return err
	}

	if rental.RenterID != callerID {
		return models.ErrForbidden
	}

	if !rental.IsActive() {
		return models.ErrNotRented
	}

	listing, err := s.listings.GetByID(ctx, rental.ListingID)
	if err != nil {
		return err
	}

	callResult, err := s.escrow.Return(ctx, listing.MintAddress)
	if err != nil {
		s.logger.Error("escrow return call failed",
			slog.String("rental_id", rentalID),
			slog.String("mint_address", pkglogger.ShortAddress(listing.MintAddress)),
			slog.Any("error", err))
		return fmt.Errorf("%w: %v", models.ErrEscrowCallFailed, err)
	}

	if err := s.rentals.ReturnWithListingRelease(ctx, rentalID, rental.ListingID); err != nil {
		return err
	}

	metrics.RentalsReturned.Inc()
	s.logger.Info("rental returned",
		slog.String("rental_id", rentalID),
		slog.String("listing_id", rental.ListingID),
		slog.Bool("escrow_simulated", callResult.Simulated),
	)
	return nil
}

// ListByRenter returns a renter's rentals, active and historical.
func (s *RentalService) ListByRenter(ctx context.Context, renterID string) ([]*models.Rental, error) {
	rentals, err := s.rentals.ListByRenter(ctx, renterID)
	if err != nil {
		s.logger.Error("failed to list rentals",
			slog.String("renter_id", renterID), slog.Any("error", err))
		return nil, err
	}
	return rentals, nil
}
