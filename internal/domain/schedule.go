package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Business logic constants
const (
	InstallmentStatusPending = "PENDING"
	InstallmentStatusPaid    = "PAID"
)

// Installment is one period of a loan's schedule.
type Installment struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	LoanID     uuid.UUID       `json:"loan_id" db:"loan_id"`
	Number     int             `json:"number" db:"number"`
	Date       time.Time       `json:"date" db:"due_date"`
	Payment    decimal.Decimal `json:"payment" db:"payment"`
	Interest   decimal.Decimal `json:"interest" db:"interest"`
	Principal  decimal.Decimal `json:"principal" db:"principal"`
	Balance    decimal.Decimal `json:"balance" db:"balance"`
	Status     string          `json:"status" db:"status"` // PENDING, PAID
	PaidAmount decimal.Decimal `json:"paid_amount" db:"paid_amount"`
	PaidDate   *time.Time      `json:"paid_date,omitempty" db:"paid_date"`
}

// Due is what is still owed on the installment.
func (i *Installment) Due() decimal.Decimal {
	due := i.Payment.Sub(i.PaidAmount)
	if due.IsNegative() {
		return decimal.Zero
	}
	return due
}

// OverdueFrom is the first instant the installment counts as late: the start
// of the calendar day after its due date. Date holds the start of the due day
// in the tenant zone.
func (i *Installment) OverdueFrom() time.Time {
	return i.Date.AddDate(0, 0, 1)
}

// IsOverdue reports whether the installment is unpaid and its due day has
// ended.
func (i *Installment) IsOverdue(asOf time.Time) bool {
	return i.Status != InstallmentStatusPaid && !asOf.Before(i.OverdueFrom())
}

type ScheduleResponse struct {
	LoanID   uuid.UUID      `json:"loan_id"`
	Schedule []*Installment `json:"schedule"`
}
