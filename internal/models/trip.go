package models

import "time"

// Scheduled trip lifecycle status constants.
const (
	TripStatusScheduled  = "scheduled"
	TripStatusInProgress = "in_progress"
	TripStatusCompleted  = "completed"
	TripStatusCanceled   = "canceled"
)

// Payment status constants (owned by the booking system; read-only here).
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

// Stage is the derived allocation phase of a scheduled trip. It is computed at
// read time from the assignment, the claim window, and the lifecycle status,
// and is never stored.
const (
	StageWaiting      = "WAITING"
	StageClaimOpen    = "CLAIM_OPEN"
	StageAssigned     = "ASSIGNED"
	StageInProgress   = "IN_PROGRESS"
	StageCompleted    = "COMPLETED"
	StageWindowPassed = "WINDOW_PASSED"
)

type ScheduledTrip struct {
	ID               string    `db:"id" json:"id"`
	PickupLat        float64   `db:"pickup_lat" json:"pickup_lat"`
	PickupLng        float64   `db:"pickup_lng" json:"pickup_lng"`
	PickupAddress    string    `db:"pickup_address" json:"pickup_address"`
	DropoffLat       float64   `db:"dropoff_lat" json:"dropoff_lat"`
	DropoffLng       float64   `db:"dropoff_lng" json:"dropoff_lng"`
	DropoffAddress   string    `db:"dropoff_address" json:"dropoff_address"`
	ScheduledTime    time.Time `db:"scheduled_time" json:"scheduled_time"`
	VehicleType      string    `db:"vehicle_type" json:"vehicle_type"`
	PaymentStatus    string    `db:"payment_status" json:"payment_status"`
	AssignedDriverID *string   `db:"assigned_driver_id" json:"assigned_driver_id,omitempty"`
	ClaimWindowHours int       `db:"claim_window_hours" json:"claim_window_hours"`
	ClaimLimit       int       `db:"claim_limit" json:"claim_limit"`
	ClaimCount       int       `db:"claim_count" json:"claim_count"`
	Status           string    `db:"status" json:"status"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// ClaimOpensAt is when the claim window opens: scheduledTime minus the window.
func (t *ScheduledTrip) ClaimOpensAt() time.Time {
	return t.ScheduledTime.Add(-time.Duration(t.ClaimWindowHours) * time.Hour)
}

// StageAt derives the trip's allocation stage at the given instant. With a
// driver assigned the lifecycle status decides; otherwise the stage follows the
// claim window boundaries.
func (t *ScheduledTrip) StageAt(now time.Time) string {
	if t.AssignedDriverID != nil {
		switch t.Status {
		case TripStatusInProgress:
			return StageInProgress
		case TripStatusCompleted:
			return StageCompleted
		default:
			return StageAssigned
		}
	}
	opensAt := t.ClaimOpensAt()
	switch {
	case now.Before(opensAt):
		return StageWaiting
	case !now.After(t.ScheduledTime):
		return StageClaimOpen
	default:
		return StageWindowPassed
	}
}

// ClaimsRemaining is claimLimit - claimCount, floored at zero.
func (t *ScheduledTrip) ClaimsRemaining() int {
	remaining := t.ClaimLimit - t.ClaimCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (t *ScheduledTrip) CanClaimAt(now time.Time) bool {
	return t.StageAt(now) == StageClaimOpen && t.ClaimsRemaining() > 0
}

// IsTerminalForReassign reports whether the lifecycle status locks the
// assignment against admin reassignment.
func (t *ScheduledTrip) IsTerminalForReassign() bool {
	return t.Status == TripStatusInProgress || t.Status == TripStatusCompleted || t.Status == TripStatusCanceled
}

// ScheduledTripRow is a trip with its derived claim-window fields, as served to
// the admin list and the driver claimable list.
type ScheduledTripRow struct {
	ScheduledTrip
	ClaimOpensAtTime time.Time `json:"claimOpensAt"`
	ClaimsLeft       int       `json:"claimsRemaining"`
	CanClaimNow      bool      `json:"canClaimNow"`
	Stage            string    `json:"stage"`
}

// ToRow snapshots the derived fields at the given instant.
func (t *ScheduledTrip) ToRow(now time.Time) ScheduledTripRow {
	return ScheduledTripRow{
		ScheduledTrip:    *t,
		ClaimOpensAtTime: t.ClaimOpensAt(),
		ClaimsLeft:       t.ClaimsRemaining(),
		CanClaimNow:      t.CanClaimAt(now),
		Stage:            t.StageAt(now),
	}
}

type ScheduledTripDetail struct {
	ScheduledTripRow
	Claims []*ClaimView       `json:"claims"`
	Audits []*AssignmentAudit `json:"assignment_history"`
}

type ScheduledTripPage struct {
	Trips    []ScheduledTripRow `json:"trips"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Total    int                `json:"total"`
}

// TripListFilter narrows the admin scheduled-trip listing. Stage filters are
// translated to time predicates in the repository so pagination stays in SQL.
type TripListFilter struct {
	Stage         string
	VehicleType   string
	PaymentStatus string
	Page          int
	PageSize      int
}
