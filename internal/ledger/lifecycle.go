package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/lending-ledger/internal/amortization"
	"github.com/segyhp/lending-ledger/internal/domain"
	customError "github.com/segyhp/lending-ledger/pkg/errors"
	"github.com/segyhp/lending-ledger/pkg/utils"
)

// NewLoan builds an ACTIVE loan and its schedule from terms.
func NewLoan(loan *domain.Loan, now time.Time) (*domain.Loan, error) {
	created := loan.Clone()
	schedule := amortization.GenerateSchedule(created.Terms())
	if len(schedule) == 0 {
		return nil, customError.WrapInvalidLoanTerms("terms do not produce a repayment schedule")
	}
	for _, inst := range schedule {
		inst.LoanID = created.ID
	}

	created.Schedule = schedule
	created.TotalInterest = amortization.TotalInterest(schedule)
	created.TotalPaid = decimal.Zero
	created.Status = domain.LoanStatusActive
	created.CreatedAt = now
	created.UpdatedAt = now
	return created, nil
}

// ReviseTerms regenerates the schedule of a loan from new terms. It is only
// allowed while no money has been applied to the loan; the previous schedule
// is discarded.
func ReviseTerms(loan *domain.Loan, terms domain.LoanTerms, now time.Time) (*domain.Loan, error) {
	if loan.HasPayments() {
		return nil, customError.WrapLoanHasPayments(loan.ID.String())
	}
	if loan.Status != domain.LoanStatusActive {
		return nil, customError.WrapInvalidLoanStatus(loan.ID.String(), loan.Status, "revise")
	}

	schedule := amortization.GenerateSchedule(terms)
	if len(schedule) == 0 {
		return nil, customError.WrapInvalidLoanTerms("terms do not produce a repayment schedule")
	}

	revised := loan.Clone()
	for _, inst := range schedule {
		inst.LoanID = revised.ID
	}
	revised.Amount = terms.Principal
	revised.Rate = terms.Rate
	revised.RateBasis = terms.RateBasis
	revised.Term = terms.Term
	revised.Frequency = terms.Frequency
	revised.StartDate = terms.StartDate
	revised.AmortizationType = terms.AmortizationType
	revised.Schedule = schedule
	revised.TotalInterest = amortization.TotalInterest(schedule)
	revised.UpdatedAt = now
	return revised, nil
}

// Cancel moves a loan without payments to CANCELLED.
func Cancel(loan *domain.Loan, now time.Time) (*domain.Loan, error) {
	if loan.HasPayments() {
		return nil, customError.WrapLoanHasPayments(loan.ID.String())
	}
	if loan.Status == domain.LoanStatusCancelled || loan.Status == domain.LoanStatusPaid {
		return nil, customError.WrapInvalidLoanStatus(loan.ID.String(), loan.Status, "cancel")
	}

	cancelled := loan.Clone()
	cancelled.Status = domain.LoanStatusCancelled
	cancelled.UpdatedAt = now
	return cancelled, nil
}

// SetArchived hides or shows an ACTIVE or PAID loan. Archiving does not
// change the lifecycle status.
func SetArchived(loan *domain.Loan, archived bool, now time.Time) (*domain.Loan, error) {
	if loan.Status != domain.LoanStatusActive && loan.Status != domain.LoanStatusPaid {
		action := "archive"
		if !archived {
			action = "unarchive"
		}
		return nil, customError.WrapInvalidLoanStatus(loan.ID.String(), loan.Status, action)
	}

	result := loan.Clone()
	result.Archived = archived
	result.UpdatedAt = now
	return result, nil
}

// MarkDefaulted moves an ACTIVE loan to DEFAULTED when its oldest pending
// installment is more than graceDays overdue. The second return value tells
// whether the status changed.
func MarkDefaulted(loan *domain.Loan, asOf time.Time, graceDays int) (*domain.Loan, bool) {
	if loan.Status != domain.LoanStatusActive {
		return loan, false
	}
	for _, inst := range loan.Schedule {
		if inst.Status == domain.InstallmentStatusPaid {
			continue
		}
		if utils.DaysOverdue(inst.Date, asOf) <= graceDays {
			return loan, false
		}
		defaulted := loan.Clone()
		defaulted.Status = domain.LoanStatusDefaulted
		defaulted.UpdatedAt = asOf
		return defaulted, true
	}
	return loan, false
}
