package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/segyhp/lending-ledger/internal/domain"
	customError "github.com/segyhp/lending-ledger/pkg/errors"
)

const loanColumns = `id, client_id, collector_id, amount, rate, rate_basis, term, frequency, start_date,
		amortization_type, total_interest, total_paid, status, archived, version, created_at, updated_at`

const installmentColumns = `id, loan_id, number, due_date, payment, interest, principal, balance, status, paid_amount, paid_date`

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES (:id, :client_id, :collector_id, :amount, :rate, :rate_basis, :term, :frequency, :start_date,
			:amortization_type, :total_interest, :total_paid, :status, :archived, :version, :created_at, :updated_at)
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.NamedExecContext(ctx, query, loan); err != nil {
		return err
	}
	if err = insertInstallments(ctx, tx, loan.Schedule); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE id = $1
	`

	var loan domain.Loan
	if err := r.db.GetContext(ctx, &loan, query, id); err != nil {
		return nil, err
	}

	schedule, err := r.getSchedule(ctx, id)
	if err != nil {
		return nil, err
	}
	loan.Schedule = schedule

	return &loan, nil
}

func (r *loanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err = updateLoanHeader(ctx, tx, loan); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}

	loan.Version++
	return nil
}

func (r *loanRepository) ReplaceSchedule(ctx context.Context, loan *domain.Loan) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err = updateLoanHeader(ctx, tx, loan); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM installments WHERE loan_id = $1`, loan.ID); err != nil {
		return err
	}
	if err = insertInstallments(ctx, tx, loan.Schedule); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}

	loan.Version++
	return nil
}

func (r *loanRepository) ListByStatus(ctx context.Context, status string) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE status = $1
		ORDER BY created_at
	`

	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query, status); err != nil {
		return nil, err
	}

	for _, loan := range loans {
		schedule, err := r.getSchedule(ctx, loan.ID)
		if err != nil {
			return nil, err
		}
		loan.Schedule = schedule
	}

	return loans, nil
}

func (r *loanRepository) PendingDueByCollector(ctx context.Context, collectorID string, until time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(i.payment - i.paid_amount), 0)
		FROM installments i
		JOIN loans l ON l.id = i.loan_id
		WHERE l.collector_id = $1
		  AND l.status IN ('ACTIVE', 'DEFAULTED')
		  AND i.status = 'PENDING'
		  AND i.due_date < $2
	`

	var total decimal.Decimal
	if err := r.db.GetContext(ctx, &total, query, collectorID, until); err != nil {
		return decimal.Zero, err
	}

	return total, nil
}

func (r *loanRepository) getSchedule(ctx context.Context, loanID uuid.UUID) ([]*domain.Installment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM installments
		WHERE loan_id = $1
		ORDER BY number
	`

	var schedule []*domain.Installment
	if err := r.db.SelectContext(ctx, &schedule, query, loanID); err != nil {
		return nil, err
	}

	return schedule, nil
}

func insertInstallments(ctx context.Context, tx *sqlx.Tx, schedule []*domain.Installment) error {
	query := `
		INSERT INTO installments (` + installmentColumns + `)
		VALUES (:id, :loan_id, :number, :due_date, :payment, :interest, :principal, :balance, :status, :paid_amount, :paid_date)
	`

	for _, inst := range schedule {
		if _, err := tx.NamedExecContext(ctx, query, inst); err != nil {
			return err
		}
	}

	return nil
}

// updateLoanHeader writes the mutable loan columns guarded by the version the
// loan was read at.
func updateLoanHeader(ctx context.Context, tx *sqlx.Tx, loan *domain.Loan) error {
	query := `
		UPDATE loans
		SET amount = $3, rate = $4, rate_basis = $5, term = $6, frequency = $7, start_date = $8,
			amortization_type = $9, total_interest = $10, total_paid = $11, status = $12, archived = $13,
			updated_at = $14, version = version + 1
		WHERE id = $1 AND version = $2
	`

	res, err := tx.ExecContext(ctx, query,
		loan.ID,
		loan.Version,
		loan.Amount,
		loan.Rate,
		loan.RateBasis,
		loan.Term,
		loan.Frequency,
		loan.StartDate,
		loan.AmortizationType,
		loan.TotalInterest,
		loan.TotalPaid,
		loan.Status,
		loan.Archived,
		loan.UpdatedAt,
	)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return customError.WrapConcurrentUpdate(loan.ID.String())
	}

	return nil
}
