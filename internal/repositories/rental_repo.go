package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/solrent/solrent/internal/database"
	"github.com/solrent/solrent/internal/models"
)

type RentalRepository struct {
	db *database.DB
}

func NewRentalRepository(db *database.DB) *RentalRepository {
	return &RentalRepository{db: db}
}

const rentalColumns = `id, listing_id, renter_id, start_date, end_date, duration_days,
	daily_rent_lamports, collateral_lamports, total_cost_lamports, status,
	created_at, updated_at`

func scanRentalRow(scanner rowScanner) (*models.Rental, error) {
	var rental models.Rental
	err := scanner.Scan(
		&rental.ID, &rental.ListingID, &rental.RenterID,
		&rental.StartDate, &rental.EndDate, &rental.DurationDays,
		&rental.DailyRentLamports, &rental.CollateralLamports, &rental.TotalCostLamports,
		&rental.Status, &rental.CreatedAt, &rental.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &rental, nil
}

func scanRentalRows(rows pgx.Rows) ([]*models.Rental, error) {
	defer rows.Close()

	rentals := make([]*models.Rental, 0)
	for rows.Next() {
		rental, err := scanRentalRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rental: %w", err)
		}
		rentals = append(rentals, rental)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return rentals, nil
}

func (r *RentalRepository) GetByID(ctx context.Context, id string) (*models.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`
	return scanRentalRow(r.db.Pool.QueryRow(ctx, query, id))
}

func (r *RentalRepository) ListByRenter(ctx context.Context, renterID string) ([]*models.Rental, error) {
	query := `
		SELECT ` + rentalColumns + `
		FROM rentals WHERE renter_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, renterID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rentals: %w", err)
	}

	return scanRentalRows(rows)
}

// CreateWithListingLock inserts the rental and flips the owning listing to
// rented in one transaction. The listing update is a compare-and-set on
// active = true: if another renter won the race the update touches zero rows,
// the transaction rolls back, and ErrAlreadyRented is returned with no
// orphan rental row left behind.
func (r *RentalRepository) CreateWithListingLock(ctx context.Context, rental *models.Rental) (*models.Rental, error) {
	rental.ID = uuid.New().String()

	now := time.Now()
	rental.CreatedAt = now
	rental.UpdatedAt = now
	rental.Status = models.RentalStatusActive

	var created *models.Rental
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		insert := `
			INSERT INTO rentals (id, listing_id, renter_id, start_date, end_date, duration_days,
				daily_rent_lamports, collateral_lamports, total_cost_lamports, status,
				created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING ` + rentalColumns

		row, err := scanRentalRow(tx.QueryRow(ctx, insert,
			rental.ID, rental.ListingID, rental.RenterID,
			rental.StartDate, rental.EndDate, rental.DurationDays,
			rental.DailyRentLamports, rental.CollateralLamports, rental.TotalCostLamports,
			rental.Status, rental.CreatedAt, rental.UpdatedAt,
		))
		if err != nil {
			return err
		}

		lock := `
			UPDATE nft_listings SET active = false, current_rental_id = $1, updated_at = $2
			WHERE id = $3 AND active = true
		`
		result, err := tx.Exec(ctx, lock, rental.ID, now, rental.ListingID)
		if err != nil {
			return database.MapPostgresError(err)
		}
		if result.RowsAffected() == 0 {
			return models.ErrAlreadyRented
		}

		created = row
		return nil
	})
	if err != nil {
		// A unique violation on the one-active-rental-per-listing index
		// means another renter committed first.
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrAlreadyRented
		}
		return nil, err
	}

	return created, nil
}

// ReturnWithListingRelease marks the rental returned and reactivates its
// listing in one transaction. The status update is conditional on the rental
// still being active, which makes a second return report ErrNotRented with
// no state change.
func (r *RentalRepository) ReturnWithListingRelease(ctx context.Context, rentalID, listingID string) error {
	now := time.Now()

	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		finish := `
			UPDATE rentals SET status = $1, updated_at = $2
			WHERE id = $3 AND status = $4
		`
		result, err := tx.Exec(ctx, finish, models.RentalStatusReturned, now, rentalID, models.RentalStatusActive)
		if err != nil {
			return database.MapPostgresError(err)
		}
		if result.RowsAffected() == 0 {
			return models.ErrNotRented
		}

		release := `
			UPDATE nft_listings SET active = true, current_rental_id = NULL, updated_at = $1
			WHERE id = $2
		`
		if _, err := tx.Exec(ctx, release, now, listingID); err != nil {
			return database.MapPostgresError(err)
		}

		return nil
	})
}
