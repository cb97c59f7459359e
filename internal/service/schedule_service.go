package service

import (
	"context"
	"time"

	apperrors "github.com/NoLS-Tanzania/nols-app-sub009/internal/errors"
	"github.com/NoLS-Tanzania/nols-app-sub009/internal/models"
	"github.com/NoLS-Tanzania/nols-app-sub009/internal/repository"
)

// ScheduleService is the read side of scheduled-trip dispatch. Stage,
// claimsRemaining and canClaimNow are derived from wall-clock time at read
// time; nothing here writes.
type ScheduleService interface {
	ListScheduled(ctx context.Context, filter models.TripListFilter) (*models.ScheduledTripPage, error)
	GetScheduled(ctx context.Context, id string) (*models.ScheduledTripDetail, error)
	ListClaimable(ctx context.Context, limit int) ([]models.ScheduledTripRow, error)
}

type scheduleService struct {
	trips  repository.TripRepository
	claims repository.ClaimRepository
	audits repository.AuditRepository
	now    func() time.Time
}

func NewScheduleService(trips repository.TripRepository, claims repository.ClaimRepository, audits repository.AuditRepository) ScheduleService {
	return &scheduleService{trips: trips, claims: claims, audits: audits, now: time.Now}
}

func (s *scheduleService) ListScheduled(ctx context.Context, filter models.TripListFilter) (*models.ScheduledTripPage, error) {
	trips, total, err := s.trips.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.now()
	rows := make([]models.ScheduledTripRow, 0, len(trips))
	for _, t := range trips {
		rows = append(rows, t.ToRow(now))
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	return &models.ScheduledTripPage{
		Trips:    rows,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}, nil
}

// GetScheduled returns the trip with its full claim list and assignment
// history, newest mutation first.
func (s *scheduleService) GetScheduled(ctx context.Context, id string) (*models.ScheduledTripDetail, error) {
	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, apperrors.NotFound("trip")
	}

	claims, err := s.claims.ListByTrip(ctx, id)
	if err != nil {
		return nil, err
	}
	audits, err := s.audits.ListByTrip(ctx, id)
	if err != nil {
		return nil, err
	}

	return &models.ScheduledTripDetail{
		ScheduledTripRow: trip.ToRow(s.now()),
		Claims:           claims,
		Audits:           audits,
	}, nil
}

func (s *scheduleService) ListClaimable(ctx context.Context, limit int) ([]models.ScheduledTripRow, error) {
	trips, err := s.trips.ListClaimable(ctx, limit)
	if err != nil {
		return nil, err
	}
	now := s.now()
	rows := make([]models.ScheduledTripRow, 0, len(trips))
	for _, t := range trips {
		rows = append(rows, t.ToRow(now))
	}
	return rows, nil
}
