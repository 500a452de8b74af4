package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/lending-ledger/internal/domain"
)

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// Create stores a new loan together with its schedule
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByID retrieves a loan and its schedule ordered by installment number
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// Update persists the loan header (status, archived flag, totals).
	// It fails with ErrConcurrentUpdate when loan.Version is stale.
	Update(ctx context.Context, loan *domain.Loan) error

	// ReplaceSchedule persists revised terms and swaps the whole schedule
	ReplaceSchedule(ctx context.Context, loan *domain.Loan) error

	// ListByStatus retrieves loans with their schedules in the given status
	ListByStatus(ctx context.Context, status string) ([]*domain.Loan, error)

	// PendingDueByCollector sums what is still owed on installments due
	// before until, over the open loans assigned to a collector
	PendingDueByCollector(ctx context.Context, collectorID string, until time.Time) (decimal.Decimal, error)
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	// RecordPayment atomically persists the touched installments, the new
	// loan totals and the receipt of one payment event
	RecordPayment(ctx context.Context, loan *domain.Loan, touched []*domain.Installment, receipt *domain.Receipt) error

	// GetReceiptsByLoanID retrieves all receipts for a loan, oldest first
	GetReceiptsByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Receipt, error)

	// GetReceiptsByCollector retrieves a collector's receipts dated in [from, to)
	GetReceiptsByCollector(ctx context.Context, collectorID string, from, to time.Time) ([]*domain.Receipt, error)
}

// ClosingRepository defines the interface for route closing records
type ClosingRepository interface {
	// Create appends a closing record
	Create(ctx context.Context, closing *domain.RouteClosing) error

	// GetLatestByCollector retrieves the most recent closing of a collector
	GetLatestByCollector(ctx context.Context, collectorID string) (*domain.RouteClosing, error)
}
