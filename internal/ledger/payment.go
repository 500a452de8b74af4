// Package ledger holds the state transitions of a loan: applying payments,
// revising terms and moving the loan through its lifecycle.
//
// Every function here takes a loan and returns a new one. The input loan is
// never mutated, so a rejected operation leaves the caller's state exactly as
// it was and a successful one can be persisted as a single unit.
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/lending-ledger/internal/domain"
	"github.com/segyhp/lending-ledger/internal/penalty"
	customError "github.com/segyhp/lending-ledger/pkg/errors"
	"github.com/segyhp/lending-ledger/pkg/utils"
)

// Result is the outcome of applying one payment.
type Result struct {
	Loan    *domain.Loan
	Receipt *domain.Receipt
	// Touched holds the installments of Loan whose paid state changed, in
	// schedule order.
	Touched []*domain.Installment
}

// ApplyPayment applies req to the installment installmentID of loan.
//
// The amount goes to the target installment first; any surplus is carried
// forward to the following pending installments in number order. A shortfall
// stays on the installment it was applied to. Penalties are recorded on the
// receipt only and never touch the schedule.
func ApplyPayment(loan *domain.Loan, installmentID uuid.UUID, req domain.PaymentRequest, now time.Time) (*Result, error) {
	if loan.Status == domain.LoanStatusCancelled || loan.Status == domain.LoanStatusPaid {
		return nil, customError.WrapLoanNotPayable(loan.ID.String(), loan.Status)
	}

	idx := indexOf(loan.Schedule, installmentID)
	if idx < 0 {
		return nil, customError.WrapInstallmentNotFound(installmentID.String())
	}
	target := loan.Schedule[idx]
	if target.Status == domain.InstallmentStatusPaid {
		return nil, customError.WrapInstallmentAlreadyPaid(target.Number)
	}

	amount := target.Due()
	if req.BaseAmount != nil {
		amount = *req.BaseAmount
	}
	if !amount.IsPositive() {
		return nil, customError.WrapInvalidAmount(amount.String())
	}
	if !amount.Equal(utils.RoundMoney(amount)) {
		return nil, customError.WrapInvalidAmount(amount.String() + " has more than two decimals")
	}

	penaltyAmount := decimal.Zero
	if req.Penalty != nil {
		penaltyAmount = *req.Penalty
	}
	if err := penalty.Validate(target, now, penaltyAmount, req.ForcePenalty); err != nil {
		return nil, err
	}

	payable := decimal.Zero
	for _, inst := range loan.Schedule[idx:] {
		if inst.Status != domain.InstallmentStatusPaid {
			payable = payable.Add(inst.Due())
		}
	}
	if amount.GreaterThan(payable) {
		return nil, customError.WrapAmountExceedsOutstanding(amount.String(), payable.String())
	}

	updated := loan.Clone()
	remaining := amount
	var touched []*domain.Installment
	var breakdown []domain.PaidInstallment

	for _, inst := range updated.Schedule[idx:] {
		if !remaining.IsPositive() {
			break
		}
		if inst.Status == domain.InstallmentStatusPaid {
			continue
		}

		applied := utils.MinDecimal(remaining, inst.Due())
		inst.PaidAmount = inst.PaidAmount.Add(applied)
		if inst.PaidAmount.GreaterThanOrEqual(inst.Payment) {
			inst.PaidAmount = inst.Payment
			inst.Status = domain.InstallmentStatusPaid
			paidAt := now
			inst.PaidDate = &paidAt
		}
		remaining = remaining.Sub(applied)

		touched = append(touched, inst)
		breakdown = append(breakdown, domain.PaidInstallment{Number: inst.Number, Amount: applied})
	}

	updated.TotalPaid = updated.TotalPaid.Add(amount)
	if updated.AllPaid() {
		updated.Status = domain.LoanStatusPaid
	}
	updated.UpdatedAt = now

	receipt := &domain.Receipt{
		ID:                uuid.New(),
		LoanID:            updated.ID,
		ClientID:          updated.ClientID,
		Date:              now,
		Amount:            amount,
		PenaltyAmount:     penaltyAmount,
		InstallmentNumber: target.Number,
		RemainingBalance:  OutstandingPrincipal(updated),
		CollectorID:       req.CollectorID,
	}
	if len(breakdown) > 1 {
		receipt.PaidInstallments = breakdown
	}

	return &Result{Loan: updated, Receipt: receipt, Touched: touched}, nil
}

// OutstandingPrincipal is the loan amount less the principal of every fully
// paid installment. Partial payments do not reduce it.
func OutstandingPrincipal(loan *domain.Loan) decimal.Decimal {
	remaining := loan.Amount
	for _, inst := range loan.Schedule {
		if inst.Status == domain.InstallmentStatusPaid {
			remaining = remaining.Sub(inst.Principal)
		}
	}
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// Outstanding is the sum still owed across all pending installments.
func Outstanding(loan *domain.Loan) decimal.Decimal {
	total := decimal.Zero
	for _, inst := range loan.Schedule {
		if inst.Status != domain.InstallmentStatusPaid {
			total = total.Add(inst.Due())
		}
	}
	return total
}

func indexOf(schedule []*domain.Installment, id uuid.UUID) int {
	for i, inst := range schedule {
		if inst.ID == id {
			return i
		}
	}
	return -1
}
