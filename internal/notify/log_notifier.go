package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/segyhp/lending-ledger/internal/domain"
	"github.com/segyhp/lending-ledger/pkg/logger"
)

// LogNotifier records issued receipts in the application log. It stands in
// where no outbound channel (SMS, printer, webhook) is configured.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.OrNop(log)}
}

func (n *LogNotifier) ReceiptIssued(_ context.Context, loan *domain.Loan, receipt *domain.Receipt) error {
	fields := []zap.Field{
		zap.String("receipt_id", receipt.ID.String()),
		zap.String("loan_id", loan.ID.String()),
		zap.String("client_id", receipt.ClientID),
		zap.Int("installment", receipt.InstallmentNumber),
		zap.String("amount", receipt.Amount.StringFixed(2)),
		zap.String("penalty", receipt.PenaltyAmount.StringFixed(2)),
		zap.String("remaining_balance", receipt.RemainingBalance.StringFixed(2)),
	}
	if len(receipt.PaidInstallments) > 0 {
		fields = append(fields, zap.Int("installments_covered", len(receipt.PaidInstallments)))
	}
	n.logger.Info("receipt issued", fields...)
	return nil
}
