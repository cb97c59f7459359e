package models

import "time"

// Assignment audit kinds.
const (
	AuditKindAssign   = "ASSIGN"
	AuditKindUnassign = "UNASSIGN"
)

// AssignmentAudit is an immutable record of a single assignment mutation. Rows
// are only ever inserted, never updated or deleted.
type AssignmentAudit struct {
	ID        string    `db:"id" json:"id"`
	TripID    string    `db:"trip_id" json:"trip_id"`
	DriverID  *string   `db:"driver_id" json:"driver_id,omitempty"`
	ClaimID   *string   `db:"claim_id" json:"claim_id,omitempty"`
	Kind      string    `db:"kind" json:"kind"`
	Reason    string    `db:"reason" json:"reason"`
	Actor     string    `db:"actor" json:"actor"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type AwardRequest struct {
	ClaimID string `json:"claimId" validate:"required,uuid"`
	Reason  string `json:"reason" validate:"required"`
}

type ReassignRequest struct {
	ClaimID string `json:"claimId" validate:"required,uuid"`
	Reason  string `json:"reason" validate:"required"`
}

type UnassignRequest struct {
	Reason string `json:"reason" validate:"required"`
}
