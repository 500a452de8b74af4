package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LoanStatusActive    = "ACTIVE"
	LoanStatusPaid      = "PAID"
	LoanStatusDefaulted = "DEFAULTED"
	LoanStatusCancelled = "CANCELLED"
)

// Frequency is the spacing between two installments.
type Frequency string

const (
	FrequencyDaily    Frequency = "DAILY"
	FrequencyWeekly   Frequency = "WEEKLY"
	FrequencyBiweekly Frequency = "BIWEEKLY"
	FrequencyMonthly  Frequency = "MONTHLY"
)

// AmortizationType selects how each period's payment splits into interest
// and principal.
type AmortizationType string

const (
	AmortizationFlat         AmortizationType = "FLAT"
	AmortizationFrench       AmortizationType = "FRENCH"
	AmortizationInterestOnly AmortizationType = "INTEREST_ONLY"
	// AmortizationOpen is an open credit line with no fixed schedule.
	AmortizationOpen AmortizationType = "OPEN"
)

// RateBasis tells how Loan.Rate is read: as a yearly percentage that gets
// divided across periods, or as a percentage charged every period.
type RateBasis string

const (
	RateBasisAnnual    RateBasis = "ANNUAL"
	RateBasisPerPeriod RateBasis = "PER_PERIOD"
)

// Loan represents a loan entity together with its schedule.
type Loan struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	ClientID         string           `json:"client_id" db:"client_id"`
	CollectorID      string           `json:"collector_id,omitempty" db:"collector_id"`
	Amount           decimal.Decimal  `json:"amount" db:"amount"`
	Rate             decimal.Decimal  `json:"rate" db:"rate"`
	RateBasis        RateBasis        `json:"rate_basis" db:"rate_basis"`
	Term             int              `json:"term" db:"term"`
	Frequency        Frequency        `json:"frequency" db:"frequency"`
	StartDate        time.Time        `json:"start_date" db:"start_date"`
	AmortizationType AmortizationType `json:"amortization_type" db:"amortization_type"`
	TotalInterest    decimal.Decimal  `json:"total_interest" db:"total_interest"`
	TotalPaid        decimal.Decimal  `json:"total_paid" db:"total_paid"`
	Status           string           `json:"status" db:"status"`
	Archived         bool             `json:"archived" db:"archived"`
	Version          int              `json:"version" db:"version"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`

	Schedule []*Installment `json:"schedule" db:"-"`
}

// Terms returns the contractual inputs the schedule was generated from.
func (l *Loan) Terms() LoanTerms {
	return LoanTerms{
		Principal:        l.Amount,
		Rate:             l.Rate,
		RateBasis:        l.RateBasis,
		Term:             l.Term,
		Frequency:        l.Frequency,
		StartDate:        l.StartDate,
		AmortizationType: l.AmortizationType,
	}
}

// HasPayments reports whether any money has been applied to the loan.
func (l *Loan) HasPayments() bool {
	if l.TotalPaid.IsPositive() {
		return true
	}
	for _, inst := range l.Schedule {
		if inst.Status == InstallmentStatusPaid || inst.PaidAmount.IsPositive() {
			return true
		}
	}
	return false
}

// AllPaid reports whether every installment is PAID. An empty schedule is
// never considered paid.
func (l *Loan) AllPaid() bool {
	if len(l.Schedule) == 0 {
		return false
	}
	for _, inst := range l.Schedule {
		if inst.Status != InstallmentStatusPaid {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the loan and its schedule.
func (l *Loan) Clone() *Loan {
	c := *l
	c.Schedule = make([]*Installment, len(l.Schedule))
	for i, inst := range l.Schedule {
		cp := *inst
		if inst.PaidDate != nil {
			d := *inst.PaidDate
			cp.PaidDate = &d
		}
		c.Schedule[i] = &cp
	}
	return &c
}

// LoanTerms are the inputs of the schedule generator.
type LoanTerms struct {
	Principal        decimal.Decimal
	Rate             decimal.Decimal
	RateBasis        RateBasis
	Term             int
	Frequency        Frequency
	StartDate        time.Time
	AmortizationType AmortizationType
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	ClientID         string           `json:"client_id" validate:"required"`
	CollectorID      string           `json:"collector_id"`
	Amount           decimal.Decimal  `json:"amount" validate:"required,gt=0"`
	Rate             decimal.Decimal  `json:"rate" validate:"gte=0"`
	RateBasis        RateBasis        `json:"rate_basis" validate:"omitempty,oneof=ANNUAL PER_PERIOD"`
	Term             int              `json:"term" validate:"required,gt=0"`
	Frequency        Frequency        `json:"frequency" validate:"required,oneof=DAILY WEEKLY BIWEEKLY MONTHLY"`
	StartDate        string           `json:"start_date" validate:"required,datetime=2006-01-02"`
	AmortizationType AmortizationType `json:"amortization_type" validate:"required,oneof=FLAT FRENCH INTEREST_ONLY"`
}

// ReviseLoanTermsRequest replaces the contractual terms of a loan that has no
// payments yet.
type ReviseLoanTermsRequest struct {
	Amount           decimal.Decimal  `json:"amount" validate:"required,gt=0"`
	Rate             decimal.Decimal  `json:"rate" validate:"gte=0"`
	RateBasis        RateBasis        `json:"rate_basis" validate:"omitempty,oneof=ANNUAL PER_PERIOD"`
	Term             int              `json:"term" validate:"required,gt=0"`
	Frequency        Frequency        `json:"frequency" validate:"required,oneof=DAILY WEEKLY BIWEEKLY MONTHLY"`
	StartDate        string           `json:"start_date" validate:"required,datetime=2006-01-02"`
	AmortizationType AmortizationType `json:"amortization_type" validate:"required,oneof=FLAT FRENCH INTEREST_ONLY"`
}

type OutstandingResponse struct {
	LoanID      uuid.UUID       `json:"loan_id"`
	Outstanding decimal.Decimal `json:"outstanding"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
	Status      string          `json:"status"`
}
