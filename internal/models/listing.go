package models

import "time"

// Lamport conversion and field bounds. Amounts are stored in lamports, the
// chain's smallest unit (1 SOL = 1e9 lamports).
const (
	LamportsPerSOL = 1_000_000_000

	MinDailyRentLamports  = LamportsPerSOL / 1000          // 0.001 SOL
	MaxDailyRentLamports  = 1000 * LamportsPerSOL           // 1000 SOL
	MinCollateralLamports = LamportsPerSOL / 1000           // 0.001 SOL
	MaxCollateralLamports = int64(10000) * LamportsPerSOL   // 10000 SOL

	MinDurationDays = 1
	MaxDurationDays = 365

	SecondsPerDay = 86400
)

// Listing is one NFT offered for timed rental under fixed terms.
// Invariant: CurrentRentalID is set if and only if Active is false and
// exactly one active Rental references this listing.
type Listing struct {
	ID                 string     `db:"id"`
	OwnerID            string     `db:"owner_id"`
	MintAddress        string     `db:"mint_address"`
	Name               string     `db:"name"`
	Description        string     `db:"description"`
	ImageURL           string     `db:"image_url"`
	DailyRentLamports  int64      `db:"daily_rent_lamports"`
	CollateralLamports int64      `db:"collateral_lamports"`
	MinDurationSecs    int64      `db:"min_duration_secs"`
	MaxDurationSecs    int64      `db:"max_duration_secs"`
	Active             bool       `db:"active"`
	CurrentRentalID    *string    `db:"current_rental_id"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

// MinDurationDays converts the listing's second-granularity lower bound to
// whole days, rounding up so a partial day still counts as a full one.
func (l *Listing) MinDurationDays() int {
	return int((l.MinDurationSecs + SecondsPerDay - 1) / SecondsPerDay)
}

// MaxDurationDays converts the upper bound to whole days, rounding down.
func (l *Listing) MaxDurationDays() int {
	return int(l.MaxDurationSecs / SecondsPerDay)
}
