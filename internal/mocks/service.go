package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/lending-ledger/internal/domain"
	"github.com/segyhp/lending-ledger/internal/penalty"
)

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLedgerService) GetLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLedgerService) GetSchedule(ctx context.Context, loanID uuid.UUID) ([]*domain.Installment, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Installment), args.Error(1)
}

func (m *MockLedgerService) GetOutstanding(ctx context.Context, loanID uuid.UUID) (*domain.OutstandingResponse, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OutstandingResponse), args.Error(1)
}

func (m *MockLedgerService) PreviewPenalties(ctx context.Context, loanID uuid.UUID, asOf string) ([]penalty.Line, error) {
	args := m.Called(ctx, loanID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]penalty.Line), args.Error(1)
}

func (m *MockLedgerService) ReviseLoanTerms(ctx context.Context, loanID uuid.UUID, request *domain.ReviseLoanTermsRequest) (*domain.Loan, error) {
	args := m.Called(ctx, loanID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLedgerService) CancelLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLedgerService) ArchiveLoan(ctx context.Context, loanID uuid.UUID, archived bool) (*domain.Loan, error) {
	args := m.Called(ctx, loanID, archived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLedgerService) MakePayment(ctx context.Context, loanID, installmentID uuid.UUID, request domain.PaymentRequest) (*domain.Loan, *domain.Receipt, error) {
	args := m.Called(ctx, loanID, installmentID, request)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Loan), args.Get(1).(*domain.Receipt), args.Error(2)
}

func (m *MockLedgerService) GetReceipts(ctx context.Context, loanID uuid.UUID) ([]*domain.Receipt, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Receipt), args.Error(1)
}

func (m *MockLedgerService) CloseRoute(ctx context.Context, collectorID string, businessDate string) (*domain.RouteClosing, error) {
	args := m.Called(ctx, collectorID, businessDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RouteClosing), args.Error(1)
}

func (m *MockLedgerService) GetLatestClosing(ctx context.Context, collectorID string) (*domain.RouteClosing, error) {
	args := m.Called(ctx, collectorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RouteClosing), args.Error(1)
}

// NewMockLedgerService creates a new mock ledger service instance
func NewMockLedgerService() *MockLedgerService {
	return &MockLedgerService{}
}
