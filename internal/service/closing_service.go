package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/segyhp/lending-ledger/internal/closing"
	"github.com/segyhp/lending-ledger/internal/domain"
	"github.com/segyhp/lending-ledger/internal/ledger"
	customError "github.com/segyhp/lending-ledger/pkg/errors"
	"github.com/segyhp/lending-ledger/pkg/utils"
)

// CloseRoute snapshots what a collector collected during a business day and
// what was still pending on the route at closing time.
func (s *LedgerService) CloseRoute(ctx context.Context, collectorID string, businessDate string) (*domain.RouteClosing, error) {
	if collectorID == "" {
		return nil, customError.WrapInvalidRequest(errors.New("collector id is required"))
	}
	day, err := utils.ParseDate(businessDate, s.location())
	if err != nil {
		return nil, customError.WrapInvalidRequest(errors.New("date must be formatted as YYYY-MM-DD"))
	}
	start, end := utils.BusinessDay(day, s.location())

	receipts, err := s.PaymentRepo.GetReceiptsByCollector(ctx, collectorID, start, end)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	pending, err := s.LoanRepo.PendingDueByCollector(ctx, collectorID, end)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	result := closing.Reconcile(closing.CloseRoute(collectorID, day, s.location(), receipts, s.now()), pending)

	if err = s.ClosingRepo.Create(ctx, result); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.Info("route closed",
		zap.String("collector_id", collectorID),
		zap.Time("business_date", result.Date),
		zap.Int("receipts", result.ReceiptsCount),
		zap.String("total", result.TotalAmount.StringFixed(2)),
		zap.String("pending", result.TotalPending.StringFixed(2)),
	)

	return result, nil
}

// GetLatestClosing returns the last closing recorded for a collector
func (s *LedgerService) GetLatestClosing(ctx context.Context, collectorID string) (*domain.RouteClosing, error) {
	result, err := s.ClosingRepo.GetLatestByCollector(ctx, collectorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapClosingNotFound(collectorID)
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return result, nil
}

// MarkOverdueLoans moves every ACTIVE loan whose oldest pending installment
// is past the grace period to DEFAULTED. It returns how many loans changed.
// A loan that fails to save is logged and skipped.
func (s *LedgerService) MarkOverdueLoans(ctx context.Context) (int, error) {
	loans, err := s.LoanRepo.ListByStatus(ctx, domain.LoanStatusActive)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	asOf := s.now()
	changed := 0
	for _, loan := range loans {
		defaulted, ok := ledger.MarkDefaulted(loan, asOf, s.graceDays())
		if !ok {
			continue
		}
		if _, err := s.saveHeader(ctx, defaulted); err != nil {
			s.logger.Error("failed to mark loan as defaulted", zap.String("loan_id", loan.ID.String()), zap.Error(err))
			continue
		}
		changed++
	}

	s.logger.Info("overdue aging finished", zap.Int("checked", len(loans)), zap.Int("defaulted", changed))
	return changed, nil
}
