package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/lending-ledger/internal/config"
	"github.com/segyhp/lending-ledger/internal/domain"
	"github.com/segyhp/lending-ledger/internal/ledger"
	"github.com/segyhp/lending-ledger/internal/mocks"
)

var (
	loanStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fixedNow  = time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC)
)

type fixture struct {
	loans    *mocks.MockLoanRepository
	payments *mocks.MockPaymentRepository
	closings *mocks.MockClosingRepository
	cache    *mocks.MockLoanCache
	notifier *mocks.MockReceiptNotifier
	service  *LedgerService
}

func testConfig() *config.Config {
	return &config.Config{
		Business: config.BusinessConfig{
			DefaultPenaltyRate: "5",
			DefaultRateBasis:   string(domain.RateBasisAnnual),
			DefaultGraceDays:   30,
			TenantTimezone:     "UTC",
		},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		loans:    new(mocks.MockLoanRepository),
		payments: new(mocks.MockPaymentRepository),
		closings: new(mocks.MockClosingRepository),
		cache:    new(mocks.MockLoanCache),
		notifier: new(mocks.MockReceiptNotifier),
	}
	f.service = NewLedgerService(
		f.loans, f.payments, f.closings, f.cache, testConfig(), nil,
		WithNotifier(f.notifier),
		WithClock(func() time.Time { return fixedNow }),
	)
	t.Cleanup(func() {
		f.loans.AssertExpectations(t)
		f.payments.AssertExpectations(t)
		f.closings.AssertExpectations(t)
		f.cache.AssertExpectations(t)
		f.notifier.AssertExpectations(t)
	})
	return f
}

func storedLoan(t *testing.T, term int) *domain.Loan {
	t.Helper()
	loan, err := ledger.NewLoan(&domain.Loan{
		ID:               uuid.New(),
		ClientID:         "client-1",
		CollectorID:      "col-1",
		Amount:           decimal.NewFromInt(3000),
		Rate:             decimal.NewFromInt(12),
		RateBasis:        domain.RateBasisAnnual,
		Term:             term,
		Frequency:        domain.FrequencyMonthly,
		StartDate:        loanStart,
		AmortizationType: domain.AmortizationFrench,
	}, loanStart)
	require.NoError(t, err)
	loan.Version = 1
	return loan
}
