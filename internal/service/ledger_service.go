package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/segyhp/lending-ledger/internal/cache"
	"github.com/segyhp/lending-ledger/internal/config"
	"github.com/segyhp/lending-ledger/internal/domain"
	"github.com/segyhp/lending-ledger/internal/repository"
	customError "github.com/segyhp/lending-ledger/pkg/errors"
	"github.com/segyhp/lending-ledger/pkg/logger"
)

const defaultGraceDays = 30

// ReceiptNotifier is told about every receipt once its payment is stored.
// Delivery failures are logged and never undo the payment.
type ReceiptNotifier interface {
	ReceiptIssued(ctx context.Context, loan *domain.Loan, receipt *domain.Receipt) error
}

type LedgerService struct {
	LoanRepo    repository.LoanRepository
	PaymentRepo repository.PaymentRepository
	ClosingRepo repository.ClosingRepository
	cache       cache.LoanCache
	notifier    ReceiptNotifier
	config      *config.Config
	logger      *zap.Logger
	now         func() time.Time
}

// Option customizes a LedgerService.
type Option func(*LedgerService)

// WithNotifier registers the collaborator told about new receipts.
func WithNotifier(n ReceiptNotifier) Option {
	return func(s *LedgerService) { s.notifier = n }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

func NewLedgerService(
	loanRepo repository.LoanRepository,
	paymentRepo repository.PaymentRepository,
	closingRepo repository.ClosingRepository,
	loanCache cache.LoanCache,
	config *config.Config,
	log *zap.Logger,
	opts ...Option,
) *LedgerService {
	s := &LedgerService{
		LoanRepo:    loanRepo,
		PaymentRepo: paymentRepo,
		ClosingRepo: closingRepo,
		cache:       loanCache,
		config:      config,
		logger:      logger.OrNop(log),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LedgerService) penaltyRate() decimal.Decimal {
	if s.config == nil {
		return decimal.Zero
	}
	return s.config.GetDefaultPenaltyRate()
}

func (s *LedgerService) rateBasis(requested domain.RateBasis) domain.RateBasis {
	if requested != "" {
		return requested
	}
	if s.config == nil {
		return domain.RateBasisAnnual
	}
	return s.config.GetDefaultRateBasis()
}

func (s *LedgerService) location() *time.Location {
	if s.config == nil {
		return time.UTC
	}
	return s.config.GetTenantLocation()
}

func (s *LedgerService) graceDays() int {
	if s.config == nil {
		return defaultGraceDays
	}
	return s.config.Business.DefaultGraceDays
}

// loadLoan reads the authoritative copy of a loan from storage.
func (s *LedgerService) loadLoan(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	loan, err := s.LoanRepo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapLoanNotFound(id.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return loan, nil
}

func (s *LedgerService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.logger.Warn("failed to invalidate cached loan", zap.String("loan_id", id.String()), zap.Error(err))
	}
}

// persistErr keeps business errors raised by the repository (stale version)
// and wraps everything else as a database failure.
func persistErr(err error) error {
	var be *customError.BusinessError
	if errors.As(err, &be) {
		return be
	}
	return customError.WrapDatabaseError(err)
}
