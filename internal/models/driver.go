package models

import (
	"time"
)

// Driver tiers, derived from lifetime volume and review metrics.
const (
	TierSilver  = "Silver"
	TierGold    = "Gold"
	TierDiamond = "Diamond"
)

// newDriverAcceptanceRate is assumed for drivers with no trip history.
const newDriverAcceptanceRate = 0.90

type Driver struct {
	ID            string     `db:"id" json:"id"`
	Phone         string     `db:"phone" json:"phone"`
	Name          string     `db:"name" json:"name"`
	Rating        float64    `db:"rating" json:"rating"`
	Available     bool       `db:"available" json:"available"`
	Active        bool       `db:"active" json:"active"`
	TotalTrips    int        `db:"total_trips" json:"total_trips"`
	AcceptedTrips int        `db:"accepted_trips" json:"accepted_trips"`
	LifetimeKm    float64    `db:"lifetime_km" json:"lifetime_km"`
	ReviewCount   int        `db:"review_count" json:"review_count"`
	CurrentLat    *float64   `db:"current_lat" json:"current_lat,omitempty"`
	CurrentLng    *float64   `db:"current_lng" json:"current_lng,omitempty"`
	LocationAt    *time.Time `db:"location_at" json:"location_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// AcceptanceRate is acceptedTrips / totalTrips. AcceptedTrips already excludes
// cancelled and declined outcomes at write time.
func (d *Driver) AcceptanceRate() float64 {
	if d.TotalTrips == 0 {
		return newDriverAcceptanceRate
	}
	return float64(d.AcceptedTrips) / float64(d.TotalTrips)
}

func (d *Driver) HasLocation() bool {
	return d.CurrentLat != nil && d.CurrentLng != nil
}

type UpdateDriverLocationRequest struct {
	Lat *float64 `json:"lat" validate:"required,latitude"`
	Lng *float64 `json:"lng" validate:"required,longitude"`
}

type UpdateAvailabilityRequest struct {
	Available *bool `json:"available" validate:"required"`
}
