package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/segyhp/lending-ledger/internal/domain"
	"github.com/segyhp/lending-ledger/internal/ledger"
	customError "github.com/segyhp/lending-ledger/pkg/errors"
)

// MakePayment applies a payment to one installment of a loan and stores the
// updated schedule, the loan totals and the receipt in one transaction.
func (s *LedgerService) MakePayment(ctx context.Context, loanID, installmentID uuid.UUID, request domain.PaymentRequest) (*domain.Loan, *domain.Receipt, error) {
	loan, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return nil, nil, err
	}

	result, err := ledger.ApplyPayment(loan, installmentID, request, s.now())
	if err != nil {
		return nil, nil, err
	}

	if err = s.PaymentRepo.RecordPayment(ctx, result.Loan, result.Touched, result.Receipt); err != nil {
		return nil, nil, persistErr(err)
	}
	s.invalidate(ctx, loanID)

	s.logger.Info("payment applied",
		zap.String("loan_id", loanID.String()),
		zap.String("receipt_id", result.Receipt.ID.String()),
		zap.String("amount", result.Receipt.Amount.StringFixed(2)),
		zap.String("penalty", result.Receipt.PenaltyAmount.StringFixed(2)),
		zap.Int("installments", len(result.Touched)),
		zap.String("loan_status", result.Loan.Status),
	)

	if s.notifier != nil {
		if err := s.notifier.ReceiptIssued(ctx, result.Loan, result.Receipt); err != nil {
			s.logger.Warn("receipt notification failed",
				zap.String("receipt_id", result.Receipt.ID.String()),
				zap.Error(err),
			)
		}
	}

	return result.Loan, result.Receipt, nil
}

// GetReceipts returns every receipt issued for a loan
func (s *LedgerService) GetReceipts(ctx context.Context, loanID uuid.UUID) ([]*domain.Receipt, error) {
	if _, err := s.loadLoan(ctx, loanID); err != nil {
		return nil, err
	}

	receipts, err := s.PaymentRepo.GetReceiptsByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return receipts, nil
}
