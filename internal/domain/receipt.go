package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaidInstallment is the share of a receipt applied to one installment.
type PaidInstallment struct {
	Number int             `json:"number"`
	Amount decimal.Decimal `json:"amount"`
}

// Receipt is the immutable record of one payment event.
type Receipt struct {
	ID                uuid.UUID         `json:"id" db:"id"`
	LoanID            uuid.UUID         `json:"loan_id" db:"loan_id"`
	ClientID          string            `json:"client_id" db:"client_id"`
	Date              time.Time         `json:"date" db:"receipt_date"`
	Amount            decimal.Decimal   `json:"amount" db:"amount"`
	PenaltyAmount     decimal.Decimal   `json:"penalty_amount" db:"penalty_amount"`
	InstallmentNumber int               `json:"installment_number" db:"installment_number"`
	PaidInstallments  []PaidInstallment `json:"paid_installments,omitempty" db:"-"`
	RemainingBalance  decimal.Decimal   `json:"remaining_balance" db:"remaining_balance"`
	CollectorID       string            `json:"collector_id,omitempty" db:"collector_id"`
}

// Total is the cash collected by the receipt, penalty included.
func (r *Receipt) Total() decimal.Decimal {
	return r.Amount.Add(r.PenaltyAmount)
}

// PaymentRequest is a validated payment instruction. A nil BaseAmount means
// the installment's outstanding due; a nil Penalty means no penalty.
type PaymentRequest struct {
	BaseAmount   *decimal.Decimal
	Penalty      *decimal.Decimal
	ForcePenalty bool
	CollectorID  string
}

// MakePaymentRequest is the wire form of PaymentRequest.
type MakePaymentRequest struct {
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	Penalty      *decimal.Decimal `json:"penalty,omitempty"`
	ForcePenalty bool             `json:"force_penalty"`
	CollectorID  string           `json:"collector_id"`
}

// ToPaymentRequest converts the wire request into a PaymentRequest.
func (r MakePaymentRequest) ToPaymentRequest() PaymentRequest {
	return PaymentRequest{
		BaseAmount:   r.Amount,
		Penalty:      r.Penalty,
		ForcePenalty: r.ForcePenalty,
		CollectorID:  r.CollectorID,
	}
}

type MakePaymentResponse struct {
	Loan    *Loan    `json:"loan"`
	Receipt *Receipt `json:"receipt"`
}
