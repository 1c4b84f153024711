package models

import "time"

// Rental statuses. The transition is one-directional: active -> returned.
const (
	RentalStatusActive   = "active"
	RentalStatusReturned = "returned"
)

// Rental is a bound, time-limited lease of a Listing. Terms are snapshotted
// from the listing at creation time so later listing edits never change an
// existing rental.
type Rental struct {
	ID                 string    `db:"id"`
	ListingID          string    `db:"listing_id"`
	RenterID           string    `db:"renter_id"`
	StartDate          time.Time `db:"start_date"`
	EndDate            time.Time `db:"end_date"`
	DurationDays       int       `db:"duration_days"`
	DailyRentLamports  int64     `db:"daily_rent_lamports"`
	CollateralLamports int64     `db:"collateral_lamports"`
	TotalCostLamports  int64     `db:"total_cost_lamports"`
	Status             string    `db:"status"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

// IsActive reports whether the rental has not been returned yet.
func (r *Rental) IsActive() bool {
	return r.Status == RentalStatusActive
}
