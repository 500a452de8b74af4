// Package penalty implements the late-payment penalty policy.
//
// Penalties are entered by the operator at payment time. This package only
// suggests a figure and validates what the operator typed; it never accrues
// mora across periods and never caps the amount.
package penalty

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/lending-ledger/internal/domain"
	customError "github.com/segyhp/lending-ledger/pkg/errors"
	"github.com/segyhp/lending-ledger/pkg/utils"
)

// Line is one row of a penalty preview.
type Line struct {
	InstallmentNumber int             `json:"installment_number"`
	DueDate           time.Time       `json:"due_date"`
	Due               decimal.Decimal `json:"due"`
	DaysOverdue       int             `json:"days_overdue"`
	Suggested         decimal.Decimal `json:"suggested_penalty"`
}

// Suggest returns defaultRatePercent% of the installment payment when the
// installment is unpaid past its due date, and zero otherwise.
func Suggest(inst *domain.Installment, referenceDate time.Time, defaultRatePercent decimal.Decimal) decimal.Decimal {
	if inst == nil || !inst.IsOverdue(referenceDate) || !defaultRatePercent.IsPositive() {
		return decimal.Zero
	}
	return utils.PercentOf(inst.Payment, defaultRatePercent)
}

// Validate checks an operator-entered penalty. Negative amounts are always
// rejected; a positive penalty on an installment that is not overdue is
// rejected unless force is set.
func Validate(inst *domain.Installment, referenceDate time.Time, amount decimal.Decimal, force bool) error {
	if amount.IsNegative() {
		return customError.WrapInvalidPenalty("penalty amount cannot be negative: " + amount.String())
	}
	if amount.IsZero() || force {
		return nil
	}
	if inst == nil || !inst.IsOverdue(referenceDate) {
		return customError.WrapInvalidPenalty("installment is not overdue; set force_penalty to charge a penalty anyway")
	}
	return nil
}

// Preview lists every overdue installment of a schedule with its suggested
// penalty as of referenceDate.
func Preview(schedule []*domain.Installment, referenceDate time.Time, defaultRatePercent decimal.Decimal) []Line {
	lines := make([]Line, 0)
	for _, inst := range schedule {
		if !inst.IsOverdue(referenceDate) {
			continue
		}
		lines = append(lines, Line{
			InstallmentNumber: inst.Number,
			DueDate:           inst.Date,
			Due:               inst.Due(),
			DaysOverdue:       utils.DaysOverdue(inst.Date, referenceDate),
			Suggested:         Suggest(inst, referenceDate, defaultRatePercent),
		})
	}
	return lines
}
