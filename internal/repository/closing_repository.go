package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/segyhp/lending-ledger/internal/domain"
)

type closingRepository struct {
	db *sqlx.DB
}

func NewClosingRepository(db *sqlx.DB) ClosingRepository {
	return &closingRepository{db: db}
}

func (r *closingRepository) Create(ctx context.Context, closing *domain.RouteClosing) error {
	query := `
		INSERT INTO route_closings (id, collector_id, business_date, total_amount, receipts_count, total_pending, difference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		closing.ID,
		closing.CollectorID,
		closing.Date,
		closing.TotalAmount,
		closing.ReceiptsCount,
		closing.TotalPending,
		closing.Difference,
		closing.CreatedAt,
	)

	return err
}

func (r *closingRepository) GetLatestByCollector(ctx context.Context, collectorID string) (*domain.RouteClosing, error) {
	query := `
		SELECT id, collector_id, business_date, total_amount, receipts_count, total_pending, difference, created_at
		FROM route_closings
		WHERE collector_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var closing domain.RouteClosing
	if err := r.db.GetContext(ctx, &closing, query, collectorID); err != nil {
		return nil, err
	}

	return &closing, nil
}
