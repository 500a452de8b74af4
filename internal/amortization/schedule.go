// Package amortization builds the contractual repayment schedule of a loan.
//
// Everything here is a pure function of the loan terms: no clock, no
// storage, no ids other than freshly generated installment ids.
package amortization

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/lending-ledger/internal/domain"
	"github.com/segyhp/lending-ledger/pkg/utils"
)

// Period describes one frequency: how many periods make a year and how many
// calendar days separate two due dates.
type Period struct {
	PerYear int
	Days    int
}

var periods = map[domain.Frequency]Period{
	domain.FrequencyDaily:    {PerYear: 365, Days: 1},
	domain.FrequencyWeekly:   {PerYear: 52, Days: 7},
	domain.FrequencyBiweekly: {PerYear: 24, Days: 15},
	domain.FrequencyMonthly:  {PerYear: 12, Days: 30},
}

var hundred = decimal.NewFromInt(100)

// PeriodOf returns the period definition of f.
func PeriodOf(f domain.Frequency) (Period, bool) {
	p, ok := periods[f]
	return p, ok
}

// RatePerPeriod converts a percentage rate into the fraction charged each
// period. An empty basis is read as annual.
func RatePerPeriod(ratePercent decimal.Decimal, basis domain.RateBasis, f domain.Frequency) (decimal.Decimal, bool) {
	p, ok := PeriodOf(f)
	if !ok {
		return decimal.Zero, false
	}
	r := ratePercent.Div(hundred)
	switch basis {
	case domain.RateBasisAnnual, "":
		return r.Div(decimal.NewFromInt(int64(p.PerYear))), true
	case domain.RateBasisPerPeriod:
		return r, true
	default:
		return decimal.Zero, false
	}
}

// GenerateSchedule returns the ordered installments of a loan with the given
// terms. Invalid terms, OPEN lines, and terms that cannot be split into
// installments of at least one cent each yield an empty schedule; callers
// must check for that before using the result.
func GenerateSchedule(terms domain.LoanTerms) []*domain.Installment {
	if !terms.Principal.IsPositive() || terms.Term <= 0 || terms.Rate.IsNegative() {
		return []*domain.Installment{}
	}
	p, ok := PeriodOf(terms.Frequency)
	if !ok {
		return []*domain.Installment{}
	}
	r, ok := RatePerPeriod(terms.Rate, terms.RateBasis, terms.Frequency)
	if !ok {
		return []*domain.Installment{}
	}

	var schedule []*domain.Installment
	switch terms.AmortizationType {
	case domain.AmortizationFlat, domain.AmortizationFrench:
		schedule = amortizing(terms, p, r)
	case domain.AmortizationInterestOnly:
		schedule = interestOnly(terms, p, r)
	default:
		return []*domain.Installment{}
	}

	// An installment with nothing due could never be settled.
	for _, inst := range schedule {
		if !inst.Payment.IsPositive() {
			return []*domain.Installment{}
		}
	}
	return schedule
}

// LevelPayment is the constant annuity payment P·r / (1 − (1+r)^−n), or P/n
// when r is zero, rounded to cents.
func LevelPayment(principal, r decimal.Decimal, n int) decimal.Decimal {
	if !r.IsPositive() {
		return utils.RoundMoney(principal.Div(decimal.NewFromInt(int64(n))))
	}
	// (1+r)^n / ((1+r)^n - 1) is the same ratio as 1 / (1 - (1+r)^-n).
	factor := decimal.NewFromInt(1).Add(r).Pow(decimal.NewFromInt(int64(n))).Round(18)
	pmt := principal.Mul(r).Mul(factor).Div(factor.Sub(decimal.NewFromInt(1)))
	return utils.RoundMoney(pmt)
}

func amortizing(terms domain.LoanTerms, p Period, r decimal.Decimal) []*domain.Installment {
	pmt := LevelPayment(terms.Principal, r, terms.Term)
	balance := terms.Principal
	schedule := make([]*domain.Installment, 0, terms.Term)

	for n := 1; n <= terms.Term; n++ {
		interest := utils.RoundMoney(balance.Mul(r))
		principal := utils.MinDecimal(utils.RoundMoney(pmt.Sub(interest)), balance)
		payment := principal.Add(interest)

		// The last period absorbs every rounding residue left on the balance.
		if n == terms.Term {
			principal = balance
			payment = principal.Add(interest)
		}
		balance = balance.Sub(principal)

		schedule = append(schedule, newInstallment(terms, p, n, payment, interest, principal, balance))
	}

	return schedule
}

func interestOnly(terms domain.LoanTerms, p Period, r decimal.Decimal) []*domain.Installment {
	interest := utils.RoundMoney(terms.Principal.Mul(r))
	schedule := make([]*domain.Installment, 0, terms.Term)

	for n := 1; n <= terms.Term; n++ {
		schedule = append(schedule, newInstallment(terms, p, n, interest, interest, decimal.Zero, terms.Principal))
	}

	return schedule
}

func newInstallment(terms domain.LoanTerms, p Period, n int, payment, interest, principal, balance decimal.Decimal) *domain.Installment {
	return &domain.Installment{
		ID:         uuid.New(),
		Number:     n,
		Date:       utils.AddDays(terms.StartDate, n*p.Days),
		Payment:    payment,
		Interest:   interest,
		Principal:  principal,
		Balance:    balance,
		Status:     domain.InstallmentStatusPending,
		PaidAmount: decimal.Zero,
	}
}

// TotalInterest sums the interest of every installment.
func TotalInterest(schedule []*domain.Installment) decimal.Decimal {
	total := decimal.Zero
	for _, inst := range schedule {
		total = total.Add(inst.Interest)
	}
	return total
}

// TotalPrincipal sums the principal of every installment.
func TotalPrincipal(schedule []*domain.Installment) decimal.Decimal {
	total := decimal.Zero
	for _, inst := range schedule {
		total = total.Add(inst.Principal)
	}
	return total
}
