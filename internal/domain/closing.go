package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RouteClosing is an append-only snapshot of a collector's business day.
type RouteClosing struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	CollectorID   string          `json:"collector_id" db:"collector_id"`
	Date          time.Time       `json:"date" db:"business_date"`
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`
	ReceiptsCount int             `json:"receipts_count" db:"receipts_count"`
	TotalPending  decimal.Decimal `json:"total_pending" db:"total_pending"`
	Difference    decimal.Decimal `json:"difference" db:"difference"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

type CloseRouteRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}
