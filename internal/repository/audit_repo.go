package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/NoLS-Tanzania/nols-app-sub009/internal/models"
)

// AuditRepository reads the append-only assignment ledger. Inserts happen only
// inside assignment-store transactions; there is no update or delete path.
type AuditRepository interface {
	ListByTrip(ctx context.Context, tripID string) ([]*models.AssignmentAudit, error)
}

type auditRepository struct {
	db *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) ListByTrip(ctx context.Context, tripID string) ([]*models.AssignmentAudit, error) {
	var audits []*models.AssignmentAudit
	query := `
		SELECT * FROM assignment_audits
		WHERE trip_id = $1
		ORDER BY created_at DESC, id DESC
	`
	err := r.db.SelectContext(ctx, &audits, query, tripID)
	return audits, err
}
