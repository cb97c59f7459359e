package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/NoLS-Tanzania/nols-app-sub009/internal/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type TripRepository interface {
	Create(ctx context.Context, trip *models.ScheduledTrip) error
	GetByID(ctx context.Context, id string) (*models.ScheduledTrip, error)
	List(ctx context.Context, filter models.TripListFilter) ([]*models.ScheduledTrip, int, error)
	ListClaimable(ctx context.Context, limit int) ([]*models.ScheduledTrip, error)
}

type tripRepository struct {
	db *sqlx.DB
}

func NewTripRepository(db *sqlx.DB) TripRepository {
	return &tripRepository{db: db}
}

func (r *tripRepository) Create(ctx context.Context, trip *models.ScheduledTrip) error {
	if trip.ID == "" {
		trip.ID = uuid.New().String()
	}
	trip.CreatedAt = time.Now()
	trip.UpdatedAt = time.Now()
	if trip.Status == "" {
		trip.Status = models.TripStatusScheduled
	}

	query := `
		INSERT INTO scheduled_trips (id, pickup_lat, pickup_lng, pickup_address,
			dropoff_lat, dropoff_lng, dropoff_address, scheduled_time, vehicle_type,
			payment_status, assigned_driver_id, claim_window_hours, claim_limit,
			claim_count, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := r.db.ExecContext(ctx, query,
		trip.ID, trip.PickupLat, trip.PickupLng, trip.PickupAddress,
		trip.DropoffLat, trip.DropoffLng, trip.DropoffAddress, trip.ScheduledTime, trip.VehicleType,
		trip.PaymentStatus, trip.AssignedDriverID, trip.ClaimWindowHours, trip.ClaimLimit,
		trip.ClaimCount, trip.Status, trip.CreatedAt, trip.UpdatedAt)
	return err
}

func (r *tripRepository) GetByID(ctx context.Context, id string) (*models.ScheduledTrip, error) {
	var trip models.ScheduledTrip
	query := `SELECT * FROM scheduled_trips WHERE id = $1`
	err := r.db.GetContext(ctx, &trip, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &trip, err
}

// claimOpensAtSQL is the claim-window opening instant expressed in SQL, so
// stage filters stay consistent with models.ScheduledTrip.StageAt.
const claimOpensAtSQL = `(scheduled_time - claim_window_hours * interval '1 hour')`

// stagePredicate translates a derived stage into a SQL predicate over the
// stored columns. Unknown stages match nothing.
func stagePredicate(stage string) (string, bool) {
	switch stage {
	case models.StageWaiting:
		return `assigned_driver_id IS NULL AND status = 'scheduled' AND NOW() < ` + claimOpensAtSQL, true
	case models.StageClaimOpen:
		return `assigned_driver_id IS NULL AND status = 'scheduled' AND NOW() BETWEEN ` + claimOpensAtSQL + ` AND scheduled_time`, true
	case models.StageWindowPassed:
		return `assigned_driver_id IS NULL AND status = 'scheduled' AND NOW() > scheduled_time`, true
	case models.StageAssigned:
		return `assigned_driver_id IS NOT NULL AND status NOT IN ('in_progress', 'completed')`, true
	case models.StageInProgress:
		return `assigned_driver_id IS NOT NULL AND status = 'in_progress'`, true
	case models.StageCompleted:
		return `assigned_driver_id IS NOT NULL AND status = 'completed'`, true
	default:
		return "", false
	}
}

func (r *tripRepository) List(ctx context.Context, filter models.TripListFilter) ([]*models.ScheduledTrip, int, error) {
	conds := []string{"1=1"}
	args := []interface{}{}

	if filter.VehicleType != "" {
		args = append(args, filter.VehicleType)
		conds = append(conds, fmt.Sprintf("vehicle_type = $%d", len(args)))
	}
	if filter.PaymentStatus != "" {
		args = append(args, filter.PaymentStatus)
		conds = append(conds, fmt.Sprintf("payment_status = $%d", len(args)))
	}
	if filter.Stage != "" {
		pred, ok := stagePredicate(filter.Stage)
		if !ok {
			return []*models.ScheduledTrip{}, 0, nil
		}
		conds = append(conds, pred)
	}
	where := strings.Join(conds, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM scheduled_trips WHERE ` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	args = append(args, pageSize, (page-1)*pageSize)
	listQuery := fmt.Sprintf(`
		SELECT * FROM scheduled_trips
		WHERE %s
		ORDER BY scheduled_time ASC, id ASC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	var trips []*models.ScheduledTrip
	if err := r.db.SelectContext(ctx, &trips, listQuery, args...); err != nil {
		return nil, 0, err
	}
	return trips, total, nil
}

// ListClaimable returns unassigned trips whose claim window is open and whose
// claim limit is not exhausted, soonest first.
func (r *tripRepository) ListClaimable(ctx context.Context, limit int) ([]*models.ScheduledTrip, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	var trips []*models.ScheduledTrip
	query := `
		SELECT * FROM scheduled_trips
		WHERE assigned_driver_id IS NULL AND status = 'scheduled'
		AND NOW() BETWEEN ` + claimOpensAtSQL + ` AND scheduled_time
		AND claim_count < claim_limit
		ORDER BY scheduled_time ASC
		LIMIT $1
	`
	err := r.db.SelectContext(ctx, &trips, query, limit)
	return trips, err
}
