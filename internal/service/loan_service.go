package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/segyhp/lending-ledger/internal/domain"
	"github.com/segyhp/lending-ledger/internal/ledger"
	"github.com/segyhp/lending-ledger/internal/penalty"
	customError "github.com/segyhp/lending-ledger/pkg/errors"
	"github.com/segyhp/lending-ledger/pkg/utils"
)

// CreateLoan creates a new loan with its repayment schedule
func (s *LedgerService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, error) {
	startDate, err := utils.ParseDate(request.StartDate, s.location())
	if err != nil {
		return nil, customError.WrapInvalidLoanTerms("start_date must be formatted as YYYY-MM-DD")
	}

	loan, err := ledger.NewLoan(&domain.Loan{
		ID:               uuid.New(),
		ClientID:         request.ClientID,
		CollectorID:      request.CollectorID,
		Amount:           request.Amount,
		Rate:             request.Rate,
		RateBasis:        s.rateBasis(request.RateBasis),
		Term:             request.Term,
		Frequency:        request.Frequency,
		StartDate:        startDate,
		AmortizationType: request.AmortizationType,
	}, s.now())
	if err != nil {
		return nil, err
	}

	if err = s.LoanRepo.Create(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.Info("loan created",
		zap.String("loan_id", loan.ID.String()),
		zap.String("client_id", loan.ClientID),
		zap.Int("installments", len(loan.Schedule)),
	)

	return loan, nil
}

// GetLoan returns a loan with its schedule, served from cache when possible
func (s *LedgerService) GetLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, loanID)
		if err != nil {
			s.logger.Warn("loan cache read failed", zap.String("loan_id", loanID.String()), zap.Error(err))
		}
		if ok {
			return cached, nil
		}
	}

	loan, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, loan); err != nil {
			s.logger.Warn("loan cache write failed", zap.String("loan_id", loanID.String()), zap.Error(err))
		}
	}

	return loan, nil
}

// GetSchedule returns the payment schedule for a loan
func (s *LedgerService) GetSchedule(ctx context.Context, loanID uuid.UUID) ([]*domain.Installment, error) {
	loan, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return loan.Schedule, nil
}

// GetOutstanding returns what is still owed on a loan
func (s *LedgerService) GetOutstanding(ctx context.Context, loanID uuid.UUID) (*domain.OutstandingResponse, error) {
	loan, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	return &domain.OutstandingResponse{
		LoanID:      loan.ID,
		Outstanding: ledger.Outstanding(loan),
		TotalPaid:   loan.TotalPaid,
		Status:      loan.Status,
	}, nil
}

// PreviewPenalties lists overdue installments with a suggested penalty
func (s *LedgerService) PreviewPenalties(ctx context.Context, loanID uuid.UUID, asOf string) ([]penalty.Line, error) {
	referenceDate := s.now()
	if asOf != "" {
		day, err := utils.ParseDate(asOf, s.location())
		if err != nil {
			return nil, customError.WrapInvalidPenalty("as_of must be formatted as YYYY-MM-DD")
		}
		referenceDate = day
	}

	loan, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	return penalty.Preview(loan.Schedule, referenceDate, s.penaltyRate()), nil
}

// ReviseLoanTerms regenerates the schedule of a loan that has no payments
func (s *LedgerService) ReviseLoanTerms(ctx context.Context, loanID uuid.UUID, request *domain.ReviseLoanTermsRequest) (*domain.Loan, error) {
	startDate, err := utils.ParseDate(request.StartDate, s.location())
	if err != nil {
		return nil, customError.WrapInvalidLoanTerms("start_date must be formatted as YYYY-MM-DD")
	}

	loan, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	revised, err := ledger.ReviseTerms(loan, domain.LoanTerms{
		Principal:        request.Amount,
		Rate:             request.Rate,
		RateBasis:        s.rateBasis(request.RateBasis),
		Term:             request.Term,
		Frequency:        request.Frequency,
		StartDate:        startDate,
		AmortizationType: request.AmortizationType,
	}, s.now())
	if err != nil {
		return nil, err
	}

	if err = s.LoanRepo.ReplaceSchedule(ctx, revised); err != nil {
		return nil, persistErr(err)
	}
	s.invalidate(ctx, loanID)

	return revised, nil
}

// CancelLoan cancels a loan that has no payments
func (s *LedgerService) CancelLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	loan, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	cancelled, err := ledger.Cancel(loan, s.now())
	if err != nil {
		return nil, err
	}

	return s.saveHeader(ctx, cancelled)
}

// ArchiveLoan hides (or, with archived false, shows again) a loan
func (s *LedgerService) ArchiveLoan(ctx context.Context, loanID uuid.UUID, archived bool) (*domain.Loan, error) {
	loan, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	updated, err := ledger.SetArchived(loan, archived, s.now())
	if err != nil {
		return nil, err
	}

	return s.saveHeader(ctx, updated)
}

func (s *LedgerService) saveHeader(ctx context.Context, loan *domain.Loan) (*domain.Loan, error) {
	if err := s.LoanRepo.Update(ctx, loan); err != nil {
		return nil, persistErr(err)
	}
	s.invalidate(ctx, loan.ID)
	return loan, nil
}
