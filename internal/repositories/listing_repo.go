package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/solrent/solrent/internal/database"
	"github.com/solrent/solrent/internal/models"
)

type ListingRepository struct {
	db *database.DB
}

func NewListingRepository(db *database.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

const listingColumns = `id, owner_id, mint_address, name, description, image_url,
	daily_rent_lamports, collateral_lamports, min_duration_secs, max_duration_secs,
	active, current_rental_id, created_at, updated_at`

// rowScanner covers both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanListingRow(scanner rowScanner) (*models.Listing, error) {
	var listing models.Listing
	err := scanner.Scan(
		&listing.ID, &listing.OwnerID, &listing.MintAddress, &listing.Name,
		&listing.Description, &listing.ImageURL,
		&listing.DailyRentLamports, &listing.CollateralLamports,
		&listing.MinDurationSecs, &listing.MaxDurationSecs,
		&listing.Active, &listing.CurrentRentalID,
		&listing.CreatedAt, &listing.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &listing, nil
}

func scanListingRows(rows pgx.Rows) ([]*models.Listing, error) {
	defer rows.Close()

	listings := make([]*models.Listing, 0)
	for rows.Next() {
		listing, err := scanListingRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, listing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return listings, nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM nft_listings WHERE id = $1`
	return scanListingRow(r.db.Pool.QueryRow(ctx, query, id))
}

func (r *ListingRepository) GetByMintAddress(ctx context.Context, mintAddress string) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM nft_listings WHERE mint_address = $1`
	return scanListingRow(r.db.Pool.QueryRow(ctx, query, mintAddress))
}

func (r *ListingRepository) ListActive(ctx context.Context, limit, offset int) ([]*models.Listing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM nft_listings WHERE active = true
		ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query active listings: %w", err)
	}

	return scanListingRows(rows)
}

func (r *ListingRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Listing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM nft_listings WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query owner listings: %w", err)
	}

	return scanListingRows(rows)
}

func (r *ListingRepository) Create(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	listing.ID = uuid.New().String()

	now := time.Now()
	listing.CreatedAt = now
	listing.UpdatedAt = now
	listing.Active = true
	listing.CurrentRentalID = nil

	query := `
		INSERT INTO nft_listings (id, owner_id, mint_address, name, description, image_url,
			daily_rent_lamports, collateral_lamports, min_duration_secs, max_duration_secs,
			active, current_rental_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + listingColumns

	return scanListingRow(r.db.Pool.QueryRow(ctx, query,
		listing.ID, listing.OwnerID, listing.MintAddress, listing.Name,
		listing.Description, listing.ImageURL,
		listing.DailyRentLamports, listing.CollateralLamports,
		listing.MinDurationSecs, listing.MaxDurationSecs,
		listing.Active, listing.CurrentRentalID, listing.CreatedAt, listing.UpdatedAt,
	))
}

// SetActive flips the active flag. It refuses rows with a bound rental so a
// concurrent rent cannot be clobbered by an owner toggle.
func (r *ListingRepository) SetActive(ctx context.Context, id string, active bool) error {
	query := `
		UPDATE nft_listings SET active = $1, updated_at = $2
		WHERE id = $3 AND current_rental_id IS NULL
	`

	result, err := r.db.Pool.Exec(ctx, query, active, time.Now(), id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrCannotToggleWhileRented
	}

	return nil
}
