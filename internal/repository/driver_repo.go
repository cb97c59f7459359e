package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/NoLS-Tanzania/nols-app-sub009/internal/models"
)

type DriverRepository interface {
	Create(ctx context.Context, driver *models.Driver) error
	GetByID(ctx context.Context, id string) (*models.Driver, error)
	FindAvailableInBox(ctx context.Context, minLat, maxLat, minLng, maxLng float64) ([]*models.Driver, error)
	UpdateLocation(ctx context.Context, id string, lat, lng float64) error
	SetAvailability(ctx context.Context, id string, available bool) error
	Deactivate(ctx context.Context, id string) error
}

type driverRepository struct {
	db *sqlx.DB
}

func NewDriverRepository(db *sqlx.DB) DriverRepository {
	return &driverRepository{db: db}
}

func (r *driverRepository) Create(ctx context.Context, driver *models.Driver) error {
	if driver.ID == "" {
		driver.ID = uuid.New().String()
	}
	driver.CreatedAt = time.Now()
	driver.UpdatedAt = time.Now()
	driver.Active = true

	query := `
		INSERT INTO drivers (id, phone, name, rating, available, active,
			total_trips, accepted_trips, lifetime_km, review_count,
			current_lat, current_lng, location_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.ExecContext(ctx, query,
		driver.ID, driver.Phone, driver.Name, driver.Rating, driver.Available, driver.Active,
		driver.TotalTrips, driver.AcceptedTrips, driver.LifetimeKm, driver.ReviewCount,
		driver.CurrentLat, driver.CurrentLng, driver.LocationAt, driver.CreatedAt, driver.UpdatedAt)
	return err
}

func (r *driverRepository) GetByID(ctx context.Context, id string) (*models.Driver, error) {
	var driver models.Driver
	query := `SELECT * FROM drivers WHERE id = $1`
	err := r.db.GetContext(ctx, &driver, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &driver, err
}

// FindAvailableInBox returns active, available drivers whose last known
// location falls inside the bounding box. The box is a pre-filter only; the
// caller verifies exact distances.
func (r *driverRepository) FindAvailableInBox(ctx context.Context, minLat, maxLat, minLng, maxLng float64) ([]*models.Driver, error) {
	var drivers []*models.Driver
	query := `
		SELECT * FROM drivers
		WHERE active = true AND available = true
		AND current_lat IS NOT NULL AND current_lng IS NOT NULL
		AND current_lat BETWEEN $1 AND $2
		AND current_lng BETWEEN $3 AND $4
	`
	err := r.db.SelectContext(ctx, &drivers, query, minLat, maxLat, minLng, maxLng)
	return drivers, err
}

func (r *driverRepository) UpdateLocation(ctx context.Context, id string, lat, lng float64) error {
	query := `UPDATE drivers SET current_lat = $1, current_lng = $2, location_at = $3, updated_at = $3 WHERE id = $4`
	_, err := r.db.ExecContext(ctx, query, lat, lng, time.Now(), id)
	return err
}

func (r *driverRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	query := `UPDATE drivers SET available = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, available, time.Now(), id)
	return err
}

// Deactivate retires a driver. Drivers are never deleted.
func (r *driverRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE drivers SET active = false, available = false, updated_at = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, time.Now(), id)
	return err
}
