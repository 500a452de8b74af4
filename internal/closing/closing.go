// Package closing aggregates a collector's receipts into a daily cash
// closing. It only reads receipts; loans and schedules are never touched.
package closing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/lending-ledger/internal/domain"
	"github.com/segyhp/lending-ledger/pkg/utils"
)

// CloseRoute totals the receipts collected by collectorID during the business
// day of businessDate in loc. Every call yields a new record; de-duplicating
// closings for the same collector and day is left to the caller.
func CloseRoute(collectorID string, businessDate time.Time, loc *time.Location, receipts []*domain.Receipt, now time.Time) *domain.RouteClosing {
	start, end := utils.BusinessDay(businessDate, loc)

	total := decimal.Zero
	count := 0
	for _, r := range InWindow(collectorID, start, end, receipts) {
		total = total.Add(r.Total())
		count++
	}

	return &domain.RouteClosing{
		ID:            uuid.New(),
		CollectorID:   collectorID,
		Date:          start,
		TotalAmount:   total,
		ReceiptsCount: count,
		TotalPending:  decimal.Zero,
		Difference:    decimal.Zero,
		CreatedAt:     now,
	}
}

// InWindow keeps the receipts of collectorID dated in [start, end).
func InWindow(collectorID string, start, end time.Time, receipts []*domain.Receipt) []*domain.Receipt {
	var out []*domain.Receipt
	for _, r := range receipts {
		if r.CollectorID != collectorID {
			continue
		}
		if r.Date.Before(start) || !r.Date.Before(end) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Reconcile records what was still pending on the collector's route at
// closing time and the gap against what was collected.
func Reconcile(c *domain.RouteClosing, totalPending decimal.Decimal) *domain.RouteClosing {
	out := *c
	out.TotalPending = totalPending
	out.Difference = totalPending.Sub(c.TotalAmount)
	return &out
}
