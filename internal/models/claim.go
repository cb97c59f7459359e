package models

import "time"

// Claim status constants. AWARDED and REJECTED are terminal; a driver re-enters
// contention only by submitting a new claim.
const (
	ClaimStatusPending  = "PENDING"
	ClaimStatusAwarded  = "AWARDED"
	ClaimStatusRejected = "REJECTED"
)

type Claim struct {
	ID         string     `db:"id" json:"id"`
	TripID     string     `db:"trip_id" json:"trip_id"`
	DriverID   string     `db:"driver_id" json:"driver_id"`
	Status     string     `db:"status" json:"status"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	ResolvedAt *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
}

// ClaimView is a claim joined with the claiming driver's public fields, used on
// the admin trip detail screen.
type ClaimView struct {
	ID           string     `db:"id" json:"id"`
	TripID       string     `db:"trip_id" json:"trip_id"`
	DriverID     string     `db:"driver_id" json:"driver_id"`
	DriverName   string     `db:"driver_name" json:"driver_name"`
	DriverPhone  string     `db:"driver_phone" json:"driver_phone"`
	DriverRating float64    `db:"driver_rating" json:"driver_rating"`
	Status       string     `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	ResolvedAt   *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
}
