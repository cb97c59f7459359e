package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/NoLS-Tanzania/nols-app-sub009/internal/models"
)

// AssignmentTx exposes the row-locked operations available inside one
// assignment transaction. Every read re-verifies current state under lock;
// there is no read-then-write gap.
type AssignmentTx interface {
	TripForUpdate(ctx context.Context, tripID string) (*models.ScheduledTrip, error)
	ClaimForUpdate(ctx context.Context, claimID string) (*models.Claim, error)
	HasPendingClaim(ctx context.Context, tripID, driverID string) (bool, error)
	SetAssignedDriver(ctx context.Context, tripID string, driverID *string) error
	SetClaimStatus(ctx context.Context, claimID, status string) error
	InsertClaim(ctx context.Context, claim *models.Claim) error
	IncrementClaimCount(ctx context.Context, tripID string) error
	AppendAudit(ctx context.Context, audit *models.AssignmentAudit) error
}

// AssignmentStore runs a function inside a single database transaction. The
// function either commits in full or nothing is observable.
type AssignmentStore interface {
	InTx(ctx context.Context, fn func(tx AssignmentTx) error) error
}

type assignmentStore struct {
	db *sqlx.DB
}

func NewAssignmentStore(db *sqlx.DB) AssignmentStore {
	return &assignmentStore{db: db}
}

func (s *assignmentStore) InTx(ctx context.Context, fn func(tx AssignmentTx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(&assignmentTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

type assignmentTx struct {
	tx *sqlx.Tx
}

func (t *assignmentTx) TripForUpdate(ctx context.Context, tripID string) (*models.ScheduledTrip, error) {
	var trip models.ScheduledTrip
	query := `SELECT * FROM scheduled_trips WHERE id = $1 FOR UPDATE`
	err := t.tx.GetContext(ctx, &trip, query, tripID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &trip, err
}

func (t *assignmentTx) ClaimForUpdate(ctx context.Context, claimID string) (*models.Claim, error) {
	var claim models.Claim
	query := `SELECT * FROM claims WHERE id = $1 FOR UPDATE`
	err := t.tx.GetContext(ctx, &claim, query, claimID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &claim, err
}

func (t *assignmentTx) HasPendingClaim(ctx context.Context, tripID, driverID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM claims WHERE trip_id = $1 AND driver_id = $2 AND status = $3)`
	err := t.tx.GetContext(ctx, &exists, query, tripID, driverID, models.ClaimStatusPending)
	return exists, err
}

func (t *assignmentTx) SetAssignedDriver(ctx context.Context, tripID string, driverID *string) error {
	query := `UPDATE scheduled_trips SET assigned_driver_id = $1, updated_at = $2 WHERE id = $3`
	_, err := t.tx.ExecContext(ctx, query, driverID, time.Now(), tripID)
	return err
}

func (t *assignmentTx) SetClaimStatus(ctx context.Context, claimID, status string) error {
	query := `UPDATE claims SET status = $1, resolved_at = $2 WHERE id = $3`
	_, err := t.tx.ExecContext(ctx, query, status, time.Now(), claimID)
	return err
}

func (t *assignmentTx) InsertClaim(ctx context.Context, claim *models.Claim) error {
	if claim.ID == "" {
		claim.ID = uuid.New().String()
	}
	if claim.CreatedAt.IsZero() {
		claim.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO claims (id, trip_id, driver_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := t.tx.ExecContext(ctx, query,
		claim.ID, claim.TripID, claim.DriverID, claim.Status, claim.CreatedAt)
	return err
}

func (t *assignmentTx) IncrementClaimCount(ctx context.Context, tripID string) error {
	query := `UPDATE scheduled_trips SET claim_count = claim_count + 1, updated_at = $1 WHERE id = $2`
	_, err := t.tx.ExecContext(ctx, query, time.Now(), tripID)
	return err
}

func (t *assignmentTx) AppendAudit(ctx context.Context, audit *models.AssignmentAudit) error {
	if audit.ID == "" {
		audit.ID = uuid.New().String()
	}
	if audit.CreatedAt.IsZero() {
		audit.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO assignment_audits (id, trip_id, driver_id, claim_id, kind, reason, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := t.tx.ExecContext(ctx, query,
		audit.ID, audit.TripID, audit.DriverID, audit.ClaimID,
		audit.Kind, audit.Reason, audit.Actor, audit.CreatedAt)
	return err
}
