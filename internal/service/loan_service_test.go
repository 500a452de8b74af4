package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/lending-ledger/internal/domain"
	"github.com/segyhp/lending-ledger/internal/mocks"
	customError "github.com/segyhp/lending-ledger/pkg/errors"
)

func createRequest() *domain.CreateLoanRequest {
	return &domain.CreateLoanRequest{
		ClientID:         "client-1",
		CollectorID:      "col-1",
		Amount:           decimal.NewFromInt(10000),
		Rate:             decimal.NewFromInt(20),
		Term:             12,
		Frequency:        domain.FrequencyMonthly,
		StartDate:        "2024-01-01",
		AmortizationType: domain.AmortizationFrench,
	}
}

func TestLedgerService_CreateLoan(t *testing.T) {
	f := newFixture(t)
	f.loans.On("Create", mock.Anything, mock.AnythingOfType("*domain.Loan")).Return(nil)

	loan, err := f.service.CreateLoan(context.Background(), createRequest())
	require.NoError(t, err)

	assert.Equal(t, domain.LoanStatusActive, loan.Status)
	assert.Equal(t, domain.RateBasisAnnual, loan.RateBasis)
	require.Len(t, loan.Schedule, 12)
	assert.Equal(t, "926.35", loan.Schedule[0].Payment.StringFixed(2))
	for _, inst := range loan.Schedule {
		assert.Equal(t, loan.ID, inst.LoanID)
	}
	assert.Equal(t, fixedNow, loan.CreatedAt)
}

func TestLedgerService_CreateLoan_InvalidStartDate(t *testing.T) {
	f := newFixture(t)
	request := createRequest()
	request.StartDate = "01/01/2024"

	_, err := f.service.CreateLoan(context.Background(), request)
	assert.True(t, errors.Is(err, customError.ErrInvalidLoanTerms))
	f.loans.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLedgerService_CreateLoan_DatabaseFailure(t *testing.T) {
	f := newFixture(t)
	f.loans.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	_, err := f.service.CreateLoan(context.Background(), createRequest())
	require.Error(t, err)
	assert.Equal(t, customError.KindInternal, customError.KindOf(err))
}

func TestLedgerService_GetLoan_CacheHit(t *testing.T) {
	f := newFixture(t)
	loan := storedLoan(t, 3)
	f.cache.On("Get", mock.Anything, loan.ID).Return(loan, true, nil)

	got, err := f.service.GetLoan(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Same(t, loan, got)
	f.loans.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestLedgerService_GetLoan_CacheMissFillsCache(t *testing.T) {
	f := newFixture(t)
	loan := storedLoan(t, 3)
	f.cache.On("Get", mock.Anything, loan.ID).Return(nil, false, nil)
	f.loans.On("GetByID", mock.Anything, loan.ID).Return(loan, nil)
	f.cache.On("Set", mock.Anything, loan).Return(nil)

	got, err := f.service.GetLoan(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, loan.ID, got.ID)
}

func TestLedgerService_GetLoan_CacheErrorFallsBackToStore(t *testing.T) {
	f := newFixture(t)
	loan := storedLoan(t, 3)
	f.cache.On("Get", mock.Anything, loan.ID).Return(nil, false, errors.New("redis down"))
	f.loans.On("GetByID", mock.Anything, loan.ID).Return(loan, nil)
	f.cache.On("Set", mock.Anything, loan).Return(errors.New("redis down"))

	got, err := f.service.GetLoan(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, loan.ID, got.ID)
}

func TestLedgerService_GetLoan_NotFound(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()
	f.cache.On("Get", mock.Anything, id).Return(nil, false, nil)
	f.loans.On("GetByID", mock.Anything, id).Return(nil, sql.ErrNoRows)

	_, err := f.service.GetLoan(context.Background(), id)
	assert.True(t, customError.IsNotFound(err))
	assert.True(t, errors.Is(err, customError.ErrLoanNotFound))
}

func TestLedgerService_GetOutstanding(t *testing.T) {
	f := newFixture(t)
	loan := storedLoan(t, 3)
	f.cache.On("Get", mock.Anything, loan.ID).Return(loan, true, nil)

	got, err := f.service.GetOutstanding(context.Background(), loan.ID)
	require.NoError(t, err)

	expected := decimal.Zero
	for _, inst := range loan.Schedule {
		expected = expected.Add(inst.Payment)
	}
	assert.True(t, got.Outstanding.Equal(expected))
	assert.True(t, got.TotalPaid.IsZero())
}

func TestLedgerService_PreviewPenalties(t *testing.T) {
	f := newFixture(t)
	loan := storedLoan(t, 3)
	f.cache.On("Get", mock.Anything, loan.ID).Return(loan, true, nil)

	// Only the first installment (due 2024-01-31) is overdue on 2024-02-05.
	lines, err := f.service.PreviewPenalties(context.Background(), loan.ID, "2024-02-05")
	require.NoError(t, err)
	require.Len(t, lines, 1)

	first := loan.Schedule[0]
	assert.Equal(t, 1, lines[0].InstallmentNumber)
	assert.Equal(t, 5, lines[0].DaysOverdue)
	assert.True(t, lines[0].Suggested.Equal(first.Payment.Mul(decimal.NewFromFloat(0.05)).Round(2)))
}

func TestLedgerService_PreviewPenalties_InvalidDate(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.PreviewPenalties(context.Background(), uuid.New(), "yesterday")
	assert.True(t, customError.IsValidation(err))
}

func TestLedgerService_ReviseLoanTerms(t *testing.T) {
	f := newFixture(t)
	loan := storedLoan(t, 3)
	f.loans.On("GetByID", mock.Anything, loan.ID).Return(loan, nil)
	f.loans.On("ReplaceSchedule", mock.Anything, mock.AnythingOfType("*domain.Loan")).Return(nil)
	f.cache.On("Delete", mock.Anything, loan.ID).Return(nil)

	request := &domain.ReviseLoanTermsRequest{
		Amount:           decimal.NewFromInt(6000),
		Rate:             decimal.NewFromInt(12),
		Term:             6,
		Frequency:        domain.FrequencyMonthly,
		StartDate:        "2024-02-01",
		AmortizationType: domain.AmortizationFlat,
	}

	revised, err := f.service.ReviseLoanTerms(context.Background(), loan.ID, request)
	require.NoError(t, err)
	assert.Len(t, revised.Schedule, 6)
	assert.True(t, revised.Amount.Equal(decimal.NewFromInt(6000)))
	assert.Len(t, loan.Schedule, 3, "stored loan must not be mutated")
}

func TestLedgerService_ReviseLoanTerms_WithPayments(t *testing.T) {
	f := newFixture(t)
	loan := storedLoan(t, 3)
	loan.Schedule[0].PaidAmount = decimal.NewFromInt(100)
	loan.TotalPaid = decimal.NewFromInt(100)
	f.loans.On("GetByID", mock.Anything, loan.ID).Return(loan, nil)

	request := &domain.ReviseLoanTermsRequest{
		Amount:           decimal.NewFromInt(6000),
		Rate:             decimal.NewFromInt(12),
		Term:             6,
		Frequency:        domain.FrequencyMonthly,
		StartDate:        "2024-02-01",
		AmortizationType: domain.AmortizationFlat,
	}

	_, err := f.service.ReviseLoanTerms(context.Background(), loan.ID, request)
	assert.True(t, errors.Is(err, customError.ErrLoanHasPayments))
	f.loans.AssertNotCalled(t, "ReplaceSchedule", mock.Anything, mock.Anything)
}

func TestLedgerService_CancelLoan(t *testing.T) {
	f := newFixture(t)
	loan := storedLoan(t, 3)
	f.loans.On("GetByID", mock.Anything, loan.ID).Return(loan, nil)
	f.loans.On("Update", mock.Anything, mock.MatchedBy(func(l *domain.Loan) bool {
		return l.Status == domain.LoanStatusCancelled
	})).Return(nil)
	f.cache.On("Delete", mock.Anything, loan.ID).Return(nil)

	cancelled, err := f.service.CancelLoan(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusCancelled, cancelled.Status)
}

func TestLedgerService_CancelLoan_ConcurrentUpdate(t *testing.T) {
	f := newFixture(t)
	loan := storedLoan(t, 3)
	f.loans.On("GetByID", mock.Anything, loan.ID).Return(loan, nil)
	f.loans.On("Update", mock.Anything, mock.Anything).Return(customError.WrapConcurrentUpdate(loan.ID.String()))

	_, err := f.service.CancelLoan(context.Background(), loan.ID)
	assert.True(t, errors.Is(err, customError.ErrConcurrentUpdate))
	assert.True(t, customError.IsStateConflict(err))
}

func TestLedgerService_ArchiveLoan(t *testing.T) {
	f := newFixture(t)
	loan := storedLoan(t, 3)
	f.loans.On("GetByID", mock.Anything, loan.ID).Return(loan, nil)
	f.loans.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.cache.On("Delete", mock.Anything, loan.ID).Return(nil)

	archived, err := f.service.ArchiveLoan(context.Background(), loan.ID, true)
	require.NoError(t, err)
	assert.True(t, archived.Archived)
	assert.Equal(t, domain.LoanStatusActive, archived.Status)
}

func TestLedgerService_NilCacheAndConfig(t *testing.T) {
	loans := new(mocks.MockLoanRepository)
	loan := storedLoan(t, 3)
	loans.On("GetByID", mock.Anything, loan.ID).Return(loan, nil)

	svc := NewLedgerService(loans, nil, nil, nil, nil, nil)

	got, err := svc.GetLoan(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, loan.ID, got.ID)
	assert.True(t, svc.penaltyRate().IsZero())
	assert.Equal(t, time.UTC, svc.location())
	assert.Equal(t, defaultGraceDays, svc.graceDays())
	loans.AssertExpectations(t)
}
