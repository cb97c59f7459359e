package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	apperrors "github.com/NoLS-Tanzania/nols-app-sub009/internal/errors"
	"github.com/NoLS-Tanzania/nols-app-sub009/internal/models"
	"github.com/NoLS-Tanzania/nols-app-sub009/internal/notify"
	"github.com/NoLS-Tanzania/nols-app-sub009/internal/repository"
)

// AssignmentService is the only write path for trip assignments. Every
// operation re-verifies its preconditions under a row lock and writes its
// audit record in the same transaction.
type AssignmentService interface {
	Award(ctx context.Context, tripID, claimID, reason, actor string) error
	Reassign(ctx context.Context, tripID, claimID, reason, actor string) error
	Unassign(ctx context.Context, tripID, reason, actor string) error
	SubmitClaim(ctx context.Context, tripID, driverID string) (*models.Claim, error)
}

type assignmentService struct {
	store    repository.AssignmentStore
	notifier notify.Notifier
	now      func() time.Time
}

func NewAssignmentService(store repository.AssignmentStore, notifier notify.Notifier) AssignmentService {
	return &assignmentService{store: store, notifier: notifier, now: time.Now}
}

// Award assigns the claim's driver to an unassigned trip and resolves the
// claim to AWARDED. Other pending claims on the trip are left untouched; they
// stay eligible for a later reassignment.
func (s *assignmentService) Award(ctx context.Context, tripID, claimID, reason, actor string) error {
	reason, err := requireReason(reason)
	if err != nil {
		return err
	}

	var awardedDriver string
	err = s.store.InTx(ctx, func(tx repository.AssignmentTx) error {
		trip, err := tx.TripForUpdate(ctx, tripID)
		if err != nil {
			return err
		}
		if trip == nil {
			return apperrors.NotFound("trip")
		}
		if trip.AssignedDriverID != nil {
			return apperrors.TripAlreadyAssigned()
		}

		claim, err := tx.ClaimForUpdate(ctx, claimID)
		if err != nil {
			return err
		}
		if claim == nil {
			return apperrors.NotFound("claim")
		}
		if claim.TripID != tripID {
			return apperrors.BadRequest("claim does not belong to this trip")
		}
		if claim.Status != models.ClaimStatusPending {
			return apperrors.ClaimAlreadyResolved(claim.Status)
		}

		if err := tx.SetAssignedDriver(ctx, tripID, &claim.DriverID); err != nil {
			return err
		}
		if err := tx.SetClaimStatus(ctx, claimID, models.ClaimStatusAwarded); err != nil {
			return err
		}

		awardedDriver = claim.DriverID
		return tx.AppendAudit(ctx, &models.AssignmentAudit{
			TripID:    tripID,
			DriverID:  &claim.DriverID,
			ClaimID:   &claimID,
			Kind:      models.AuditKindAssign,
			Reason:    reason,
			Actor:     actor,
			CreatedAt: s.now(),
		})
	})
	if err != nil {
		return err
	}

	s.notifyAssigned(ctx, awardedDriver, tripID, "you have been assigned a scheduled trip")
	return nil
}

// Reassign moves an assigned trip to a different claimant. The backing claim
// keeps its own status; this is an administrative override, not a claim
// resolution.
func (s *assignmentService) Reassign(ctx context.Context, tripID, claimID, reason, actor string) error {
	reason, err := requireReason(reason)
	if err != nil {
		return err
	}

	var newDriver string
	err = s.store.InTx(ctx, func(tx repository.AssignmentTx) error {
		trip, err := tx.TripForUpdate(ctx, tripID)
		if err != nil {
			return err
		}
		if trip == nil {
			return apperrors.NotFound("trip")
		}
		if trip.AssignedDriverID == nil {
			return apperrors.NoAssignedDriver()
		}
		if trip.IsTerminalForReassign() {
			return apperrors.AssignmentLocked(trip.Status)
		}

		claim, err := tx.ClaimForUpdate(ctx, claimID)
		if err != nil {
			return err
		}
		if claim == nil {
			return apperrors.NotFound("claim")
		}
		if claim.TripID != tripID {
			return apperrors.BadRequest("claim does not belong to this trip")
		}
		if claim.DriverID == *trip.AssignedDriverID {
			return apperrors.BadRequest("claim driver is already assigned to this trip")
		}

		displaced := *trip.AssignedDriverID
		if err := tx.SetAssignedDriver(ctx, tripID, &claim.DriverID); err != nil {
			return err
		}

		newDriver = claim.DriverID
		return tx.AppendAudit(ctx, &models.AssignmentAudit{
			TripID:    tripID,
			DriverID:  &claim.DriverID,
			ClaimID:   &claimID,
			Kind:      models.AuditKindAssign,
			Reason:    fmt.Sprintf("%s (replaces driver %s)", reason, displaced),
			Actor:     actor,
			CreatedAt: s.now(),
		})
	})
	if err != nil {
		return err
	}

	s.notifyAssigned(ctx, newDriver, tripID, "a scheduled trip has been reassigned to you")
	return nil
}

// Unassign clears the current driver. The trip's stage then recomputes from
// the claim window as if it had never been assigned.
func (s *assignmentService) Unassign(ctx context.Context, tripID, reason, actor string) error {
	reason, err := requireReason(reason)
	if err != nil {
		return err
	}

	return s.store.InTx(ctx, func(tx repository.AssignmentTx) error {
		trip, err := tx.TripForUpdate(ctx, tripID)
		if err != nil {
			return err
		}
		if trip == nil {
			return apperrors.NotFound("trip")
		}
		if trip.AssignedDriverID == nil {
			return apperrors.NoAssignedDriver()
		}

		removed := *trip.AssignedDriverID
		if err := tx.SetAssignedDriver(ctx, tripID, nil); err != nil {
			return err
		}

		return tx.AppendAudit(ctx, &models.AssignmentAudit{
			TripID:    tripID,
			DriverID:  nil,
			ClaimID:   nil,
			Kind:      models.AuditKindUnassign,
			Reason:    fmt.Sprintf("%s (removed driver %s)", reason, removed),
			Actor:     actor,
			CreatedAt: s.now(),
		})
	})
}

// SubmitClaim records a driver's offer to take a scheduled trip. The claim
// counter moves with the insert in one transaction, so claimCount can never
// exceed claimLimit.
func (s *assignmentService) SubmitClaim(ctx context.Context, tripID, driverID string) (*models.Claim, error) {
	claim := &models.Claim{
		TripID:    tripID,
		DriverID:  driverID,
		Status:    models.ClaimStatusPending,
		CreatedAt: s.now(),
	}

	err := s.store.InTx(ctx, func(tx repository.AssignmentTx) error {
		trip, err := tx.TripForUpdate(ctx, tripID)
		if err != nil {
			return err
		}
		if trip == nil {
			return apperrors.NotFound("trip")
		}
		if stage := trip.StageAt(s.now()); stage != models.StageClaimOpen {
			return apperrors.ClaimWindowClosed(stage)
		}
		if trip.ClaimsRemaining() <= 0 {
			return apperrors.ClaimLimitReached()
		}

		pending, err := tx.HasPendingClaim(ctx, tripID, driverID)
		if err != nil {
			return err
		}
		if pending {
			return apperrors.Conflict("driver already has a pending claim on this trip")
		}

		if err := tx.InsertClaim(ctx, claim); err != nil {
			return err
		}
		return tx.IncrementClaimCount(ctx, tripID)
	})
	if err != nil {
		return nil, err
	}
	return claim, nil
}

// requireReason enforces the non-empty reason contract on every mutation.
func requireReason(reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "", apperrors.EmptyReason()
	}
	return reason, nil
}

func (s *assignmentService) notifyAssigned(ctx context.Context, driverID, tripID, message string) {
	if s.notifier == nil || driverID == "" {
		return
	}
	if err := s.notifier.TripAssigned(ctx, driverID, tripID, message); err != nil {
		log.Printf("failed to notify driver %s about trip %s: %v", driverID, tripID, err)
	}
}
