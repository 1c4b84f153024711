package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/solrent/solrent/internal/config"
	"github.com/solrent/solrent/internal/escrow"
	"github.com/solrent/solrent/internal/metrics"
	"github.com/solrent/solrent/internal/models"
	"github.com/solrent/solrent/internal/security"
	"github.com/solrent/solrent/internal/validation"
	pkglogger "github.com/solrent/solrent/pkg/logger"
)

// Rate-limit key for listing submissions, scoped per user.
const listingSubmitKey = "nft-listing-submit"

// Field length limits for sanitized text.
const (
	maxNameLength        = 100
	maxDescriptionLength = 2000
)

// ListingRepository defines the record-store operations the listing
// lifecycle needs.
type ListingRepository interface {
	GetByID(ctx context.Context, id string) (*models.Listing, error)
	GetByMintAddress(ctx context.Context, mintAddress string) (*models.Listing, error)
	ListActive(ctx context.Context, limit, offset int) ([]*models.Listing, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Listing, error)
	Create(ctx context.Context, listing *models.Listing) (*models.Listing, error)
	SetActive(ctx context.Context, id string, active bool) error
}

// CreateListingInput carries the validated-and-sanitized-to-be fields of a
// new listing. Amounts are lamports; durations are whole days.
type CreateListingInput struct {
	MintAddress        string
	Name               string
	Description        string
	ImageURL           string
	DailyRentLamports  int64
	CollateralLamports int64
	MinDurationDays    int
	MaxDurationDays    int
}

// ListingService drives the listing lifecycle. Every mutating operation runs
// rate limiting and field validation before any state-changing call; every
// rejection is recorded as a security event.
type ListingService struct {
	repo    ListingRepository
	escrow  escrow.Client
	limiter *security.RateLimiter
	monitor *security.Monitor
	cfg     config.SecurityConfig
	logger  *slog.Logger
}

// NewListingService creates a ListingService.
func NewListingService(
	repo ListingRepository,
	escrowClient escrow.Client,
	limiter *security.RateLimiter,
	monitor *security.Monitor,
	cfg config.SecurityConfig,
	logger *slog.Logger,
) *ListingService {
	return &ListingService{
		repo:    repo,
		escrow:  escrowClient,
		limiter: limiter,
		monitor: monitor,
		cfg:     cfg,
		logger:  logger,
	}
}

// Create validates every field, calls the escrow authority, and persists a
// new active listing. No mutation is attempted against invalid input.
func (s *ListingService) Create(ctx context.Context, ownerID string, input CreateListingInput) (*models.Listing, error) {
	allowed, _ := s.limiter.Check(
		listingSubmitKey+":"+ownerID,
		s.cfg.ListingSubmitMaxAttempts,
		s.cfg.ListingSubmitWindow,
	)
	if !allowed {
		s.monitor.LogRateLimitExceeded(listingSubmitKey, ownerID, s.cfg.ListingSubmitMaxAttempts)
		metrics.RateLimitRejections.WithLabelValues(listingSubmitKey).Inc()
		return nil, models.ErrRateLimited
	}

	if result := validation.ValidateMintAddress(input.MintAddress); !result.Valid {
		return nil, s.rejectField(ownerID, "create_listing", "mintAddress", result.Err, input.MintAddress)
	}

	// One listing per mint; the unique index on mint_address backstops this
	// check against concurrent submissions.
	if _, err := s.repo.GetByMintAddress(ctx, input.MintAddress); err == nil {
		return nil, models.ErrConflict
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check existing listing", slog.Any("error", err))
		return nil, err
	}

	if input.ImageURL != "" {
		if result := validation.ValidateSecureURL(input.ImageURL); !result.Valid {
			return nil, s.rejectField(ownerID, "create_listing", "imageUrl", result.Err, input.ImageURL)
		}
	}

	name := s.sanitizeField(ownerID, "name", input.Name, maxNameLength, validation.SuspiciousShortFieldLength)
	description := s.sanitizeField(ownerID, "description", input.Description, maxDescriptionLength, validation.SuspiciousLongFieldLength)

	checks := []struct {
		value    float64
		min, max float64
		label    string
		field    string
		rawValue string
	}{
		{float64(input.DailyRentLamports), float64(models.MinDailyRentLamports), float64(models.MaxDailyRentLamports), "daily rent (lamports)", "dailyRentLamports", fmt.Sprint(input.DailyRentLamports)},
		{float64(input.CollateralLamports), float64(models.MinCollateralLamports), float64(models.MaxCollateralLamports), "collateral (lamports)", "collateralLamports", fmt.Sprint(input.CollateralLamports)},
		{float64(input.MinDurationDays), models.MinDurationDays, models.MaxDurationDays, "minimum duration", "minDurationDays", fmt.Sprint(input.MinDurationDays)},
		{float64(input.MaxDurationDays), models.MinDurationDays, models.MaxDurationDays, "maximum duration", "maxDurationDays", fmt.Sprint(input.MaxDurationDays)},
	}
	for _, c := range checks {
		if result := validation.ValidateNumericRange(c.value, c.min, c.max, c.label); !result.Valid {
			return nil, s.rejectField(ownerID, "create_listing", c.field, result.Err, c.rawValue)
		}
	}

	if input.MinDurationDays > input.MaxDurationDays {
		msg := "minimum duration cannot be greater than maximum duration"
		return nil, s.rejectField(ownerID, "create_listing", "durationRange", msg,
			fmt.Sprintf("%d-%d", input.MinDurationDays, input.MaxDurationDays))
	}

	terms := escrow.ListingTerms{
		DailyRentLamports:  input.DailyRentLamports,
		CollateralLamports: input.CollateralLamports,
		MinDurationDays:    input.MinDurationDays,
		MaxDurationDays:    input.MaxDurationDays,
	}
	callResult, err := s.escrow.List(ctx, input.MintAddress, terms)
	if err != nil {
		s.logger.Error("escrow list call failed",
			slog.String("mint_address", pkglogger.ShortAddress(input.MintAddress)),
			slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", models.ErrEscrowCallFailed, err)
	}

	listing := &models.Listing{
		OwnerID:            ownerID,
		MintAddress:        input.MintAddress,
		Name:               name,
		Description:        description,
		ImageURL:           input.ImageURL,
		DailyRentLamports:  input.DailyRentLamports,
		CollateralLamports: input.CollateralLamports,
		MinDurationSecs:    int64(input.MinDurationDays) * models.SecondsPerDay,
		MaxDurationSecs:    int64(input.MaxDurationDays) * models.SecondsPerDay,
	}

	created, err := s.repo.Create(ctx, listing)
	if err != nil {
		s.logger.Error("failed to persist listing", slog.Any("error", err))
		return nil, err
	}

	metrics.ListingsCreated.Inc()
	s.logger.Info("listing created",
		slog.String("listing_id", created.ID),
		slog.String("owner_id", ownerID),
		slog.String("mint_address", pkglogger.ShortAddress(created.MintAddress)),
		slog.Bool("escrow_simulated", callResult.Simulated),
	)
	return created, nil
}

// ToggleActive flips a listing's active flag for its owner. The toggle is
// rejected while a rental is bound to the listing: leaving the Rented state
// is driven only by the rental lifecycle.
func (s *ListingService) ToggleActive(ctx context.Context, listingID, callerID string) (*models.Listing, error) {
	listing, err := s.repo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if listing.OwnerID != callerID {
		return nil, models.ErrForbidden
	}

	if listing.CurrentRentalID != nil {
		return nil, models.ErrCannotToggleWhileRented
	}

	if err := s.repo.SetActive(ctx, listingID, !listing.Active); err != nil {
		return nil, err
	}

	s.logger.Info("listing status toggled",
		slog.String("listing_id", listingID),
		slog.Bool("active", !listing.Active))

	return s.repo.GetByID(ctx, listingID)
}

// ListActive returns bookable listings for the marketplace view.
func (s *ListingService) ListActive(ctx context.Context, limit, offset int) ([]*models.Listing, error) {
	listings, err := s.repo.ListActive(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list active listings", slog.Any("error", err))
		return nil, err
	}
	return listings, nil
}

// ListByOwner returns all of one owner's listings, rented or not.
func (s *ListingService) ListByOwner(ctx context.Context, ownerID string) ([]*models.Listing, error) {
	listings, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list owner listings",
			slog.String("owner_id", ownerID), slog.Any("error", err))
		return nil, err
	}
	return listings, nil
}

// Get returns one listing by id.
func (s *ListingService) Get(ctx context.Context, id string) (*models.Listing, error) {
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return listing, nil
}

// rejectField records the validation failure and returns the error the
// caller surfaces.
func (s *ListingService) rejectField(userID, operation, field, errMsg, value string) error {
	s.monitor.LogValidationError(field, errMsg, userID, value)
	metrics.ValidationFailures.WithLabelValues(operation, field).Inc()
	return models.NewValidationError(field, errMsg)
}

// sanitizeField cleans a free-text field and records a suspicious_input
// event when the content changed or was unusually long.
func (s *ListingService) sanitizeField(userID, field, value string, maxLength, suspiciousLength int) string {
	clean := validation.SanitizeText(value, maxLength)
	if clean != value {
		s.monitor.LogSuspiciousInput(field, "content sanitized during input", userID, value)
	}
	if validation.UTF16Length(value) > suspiciousLength {
		s.monitor.LogSuspiciousInput(field, "unusually long input detected", userID, value)
	}
	return clean
}
