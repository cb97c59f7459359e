package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/NoLS-Tanzania/nols-app-sub009/internal/models"
)

// ClaimRepository is the read side of claims. Claim writes happen only inside
// assignment-store transactions.
type ClaimRepository interface {
	GetByID(ctx context.Context, id string) (*models.Claim, error)
	ListByTrip(ctx context.Context, tripID string) ([]*models.ClaimView, error)
}

type claimRepository struct {
	db *sqlx.DB
}

func NewClaimRepository(db *sqlx.DB) ClaimRepository {
	return &claimRepository{db: db}
}

func (r *claimRepository) GetByID(ctx context.Context, id string) (*models.Claim, error) {
	var claim models.Claim
	query := `SELECT * FROM claims WHERE id = $1`
	err := r.db.GetContext(ctx, &claim, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &claim, err
}

func (r *claimRepository) ListByTrip(ctx context.Context, tripID string) ([]*models.ClaimView, error) {
	var claims []*models.ClaimView
	query := `
		SELECT c.id, c.trip_id, c.driver_id, d.name AS driver_name,
			d.phone AS driver_phone, d.rating AS driver_rating,
			c.status, c.created_at, c.resolved_at
		FROM claims c
		JOIN drivers d ON d.id = c.driver_id
		WHERE c.trip_id = $1
		ORDER BY c.created_at ASC
	`
	err := r.db.SelectContext(ctx, &claims, query, tripID)
	return claims, err
}
