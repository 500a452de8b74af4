package repository

import (
	"context"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/lending-ledger/internal/domain"
)

const receiptColumns = `id, loan_id, client_id, receipt_date, amount, penalty_amount, installment_number,
		paid_installments, remaining_balance, collector_id`

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// receiptRow carries the JSONB breakdown column next to the receipt fields.
type receiptRow struct {
	domain.Receipt
	PaidInstallmentsJSON []byte `db:"paid_installments"`
}

func (row *receiptRow) toDomain() (*domain.Receipt, error) {
	receipt := row.Receipt
	if len(row.PaidInstallmentsJSON) > 0 {
		if err := json.Unmarshal(row.PaidInstallmentsJSON, &receipt.PaidInstallments); err != nil {
			return nil, err
		}
	}
	if len(receipt.PaidInstallments) == 0 {
		receipt.PaidInstallments = nil
	}
	return &receipt, nil
}

func (r *paymentRepository) RecordPayment(ctx context.Context, loan *domain.Loan, touched []*domain.Installment, receipt *domain.Receipt) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Serializes concurrent payments on the same loan: the second writer
	// finds the version already bumped and fails.
	if err = updateLoanHeader(ctx, tx, loan); err != nil {
		return err
	}

	installmentQuery := `
		UPDATE installments
		SET status = $2, paid_amount = $3, paid_date = $4
		WHERE id = $1
	`
	for _, inst := range touched {
		if _, err = tx.ExecContext(ctx, installmentQuery, inst.ID, inst.Status, inst.PaidAmount, inst.PaidDate); err != nil {
			return err
		}
	}

	breakdown, err := json.Marshal(receipt.PaidInstallments)
	if err != nil {
		return err
	}
	if receipt.PaidInstallments == nil {
		breakdown = []byte("[]")
	}

	receiptQuery := `
		INSERT INTO receipts (` + receiptColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = tx.ExecContext(ctx, receiptQuery,
		receipt.ID,
		receipt.LoanID,
		receipt.ClientID,
		receipt.Date,
		receipt.Amount,
		receipt.PenaltyAmount,
		receipt.InstallmentNumber,
		string(breakdown),
		receipt.RemainingBalance,
		receipt.CollectorID,
	)
	if err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	loan.Version++
	return nil
}

func (r *paymentRepository) GetReceiptsByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Receipt, error) {
	query := `
		SELECT ` + receiptColumns + `
		FROM receipts
		WHERE loan_id = $1
		ORDER BY receipt_date, id
	`

	return r.selectReceipts(ctx, query, loanID)
}

func (r *paymentRepository) GetReceiptsByCollector(ctx context.Context, collectorID string, from, to time.Time) ([]*domain.Receipt, error) {
	query := `
		SELECT ` + receiptColumns + `
		FROM receipts
		WHERE collector_id = $1 AND receipt_date >= $2 AND receipt_date < $3
		ORDER BY receipt_date, id
	`

	return r.selectReceipts(ctx, query, collectorID, from, to)
}

func (r *paymentRepository) selectReceipts(ctx context.Context, query string, args ...interface{}) ([]*domain.Receipt, error) {
	var rows []*receiptRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	receipts := make([]*domain.Receipt, 0, len(rows))
	for _, row := range rows {
		receipt, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, receipt)
	}

	return receipts, nil
}
