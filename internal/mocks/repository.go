package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/lending-ledger/internal/domain"
)

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) ReplaceSchedule(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) ListByStatus(ctx context.Context, status string) ([]*domain.Loan, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) PendingDueByCollector(ctx context.Context, collectorID string, until time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, collectorID, until)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) RecordPayment(ctx context.Context, loan *domain.Loan, touched []*domain.Installment, receipt *domain.Receipt) error {
	args := m.Called(ctx, loan, touched, receipt)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetReceiptsByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Receipt, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Receipt), args.Error(1)
}

func (m *MockPaymentRepository) GetReceiptsByCollector(ctx context.Context, collectorID string, from, to time.Time) ([]*domain.Receipt, error) {
	args := m.Called(ctx, collectorID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Receipt), args.Error(1)
}

type MockClosingRepository struct {
	mock.Mock
}

func (m *MockClosingRepository) Create(ctx context.Context, closing *domain.RouteClosing) error {
	args := m.Called(ctx, closing)
	return args.Error(0)
}

func (m *MockClosingRepository) GetLatestByCollector(ctx context.Context, collectorID string) (*domain.RouteClosing, error) {
	args := m.Called(ctx, collectorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RouteClosing), args.Error(1)
}

type MockLoanCache struct {
	mock.Mock
}

func (m *MockLoanCache) Get(ctx context.Context, id uuid.UUID) (*domain.Loan, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Loan), args.Bool(1), args.Error(2)
}

func (m *MockLoanCache) Set(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanCache) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockReceiptNotifier struct {
	mock.Mock
}

func (m *MockReceiptNotifier) ReceiptIssued(ctx context.Context, loan *domain.Loan, receipt *domain.Receipt) error {
	args := m.Called(ctx, loan, receipt)
	return args.Error(0)
}
