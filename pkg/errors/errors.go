package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrLoanNotFound             = errors.New("loan not found")
	ErrInstallmentNotFound      = errors.New("installment not found")
	ErrClosingNotFound          = errors.New("route closing not found")
	ErrInstallmentAlreadyPaid   = errors.New("installment is already paid")
	ErrLoanHasPayments          = errors.New("loan already has payments")
	ErrLoanNotPayable           = errors.New("loan does not accept payments")
	ErrInvalidLoanStatus        = errors.New("invalid loan status transition")
	ErrInvalidAmount            = errors.New("invalid amount")
	ErrInvalidPenalty           = errors.New("invalid penalty")
	ErrAmountExceedsOutstanding = errors.New("amount exceeds outstanding balance")
	ErrInvalidLoanTerms         = errors.New("invalid loan terms")
	ErrConcurrentUpdate         = errors.New("loan was modified concurrently")
)

// Kind classifies a BusinessError for callers that translate it into a
// user-visible message or a transport status.
type Kind string

const (
	KindValidation    Kind = "ValidationError"
	KindStateConflict Kind = "StateConflictError"
	KindNotFound      Kind = "NotFoundError"
	KindInternal      Kind = "InternalError"
)

// BusinessError represents a business logic error
type BusinessError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(kind Kind, code, message string, err error) *BusinessError {
	return &BusinessError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// KindOf returns the kind of the first BusinessError in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindInternal
}

// IsValidation, IsStateConflict and IsNotFound report the kind of err.
func IsValidation(err error) bool    { return err != nil && KindOf(err) == KindValidation }
func IsStateConflict(err error) bool { return err != nil && KindOf(err) == KindStateConflict }
func IsNotFound(err error) bool      { return err != nil && KindOf(err) == KindNotFound }

// Error codes
const (
	ErrCodeLoanNotFound             = "LOAN_NOT_FOUND"
	ErrCodeInstallmentNotFound      = "INSTALLMENT_NOT_FOUND"
	ErrCodeClosingNotFound          = "CLOSING_NOT_FOUND"
	ErrCodeInstallmentAlreadyPaid   = "INSTALLMENT_ALREADY_PAID"
	ErrCodeLoanHasPayments          = "LOAN_HAS_PAYMENTS"
	ErrCodeLoanNotPayable           = "LOAN_NOT_PAYABLE"
	ErrCodeInvalidLoanStatus        = "INVALID_LOAN_STATUS"
	ErrCodeInvalidAmount            = "INVALID_AMOUNT"
	ErrCodeInvalidPenalty           = "INVALID_PENALTY"
	ErrCodeAmountExceedsOutstanding = "AMOUNT_EXCEEDS_OUTSTANDING"
	ErrCodeInvalidLoanTerms         = "INVALID_LOAN_TERMS"
	ErrCodeInvalidRequest           = "INVALID_REQUEST"
	ErrCodeConcurrentUpdate         = "CONCURRENT_UPDATE"
	ErrCodeDatabaseError            = "DATABASE_ERROR"
	ErrCodeCacheError               = "CACHE_ERROR"
)

// Wrap common errors with business context
func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		KindNotFound,
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapInstallmentNotFound(installmentID string) *BusinessError {
	return NewBusinessError(
		KindNotFound,
		ErrCodeInstallmentNotFound,
		fmt.Sprintf("Installment with ID %s not found", installmentID),
		ErrInstallmentNotFound,
	)
}

func WrapClosingNotFound(collectorID string) *BusinessError {
	return NewBusinessError(
		KindNotFound,
		ErrCodeClosingNotFound,
		fmt.Sprintf("No route closing found for collector %s", collectorID),
		ErrClosingNotFound,
	)
}

func WrapInstallmentAlreadyPaid(number int) *BusinessError {
	return NewBusinessError(
		KindStateConflict,
		ErrCodeInstallmentAlreadyPaid,
		fmt.Sprintf("Installment #%d is already paid", number),
		ErrInstallmentAlreadyPaid,
	)
}

func WrapLoanHasPayments(loanID string) *BusinessError {
	return NewBusinessError(
		KindStateConflict,
		ErrCodeLoanHasPayments,
		fmt.Sprintf("Loan with ID %s already has payments registered", loanID),
		ErrLoanHasPayments,
	)
}

func WrapLoanNotPayable(loanID, status string) *BusinessError {
	return NewBusinessError(
		KindStateConflict,
		ErrCodeLoanNotPayable,
		fmt.Sprintf("Loan with ID %s is %s and does not accept payments", loanID, status),
		ErrLoanNotPayable,
	)
}

func WrapInvalidLoanStatus(loanID, from, action string) *BusinessError {
	return NewBusinessError(
		KindStateConflict,
		ErrCodeInvalidLoanStatus,
		fmt.Sprintf("Cannot %s loan %s while it is %s", action, loanID, from),
		ErrInvalidLoanStatus,
	)
}

func WrapInvalidAmount(amount string) *BusinessError {
	return NewBusinessError(
		KindValidation,
		ErrCodeInvalidAmount,
		fmt.Sprintf("Invalid payment amount: %s", amount),
		ErrInvalidAmount,
	)
}

func WrapInvalidPenalty(reason string) *BusinessError {
	return NewBusinessError(
		KindValidation,
		ErrCodeInvalidPenalty,
		reason,
		ErrInvalidPenalty,
	)
}

func WrapAmountExceedsOutstanding(amount, outstanding string) *BusinessError {
	return NewBusinessError(
		KindValidation,
		ErrCodeAmountExceedsOutstanding,
		fmt.Sprintf("Payment amount %s exceeds payable balance %s", amount, outstanding),
		ErrAmountExceedsOutstanding,
	)
}

func WrapInvalidLoanTerms(reason string) *BusinessError {
	return NewBusinessError(
		KindValidation,
		ErrCodeInvalidLoanTerms,
		reason,
		ErrInvalidLoanTerms,
	)
}

func WrapInvalidRequest(err error) *BusinessError {
	return NewBusinessError(
		KindValidation,
		ErrCodeInvalidRequest,
		"request validation failed",
		err,
	)
}

func WrapConcurrentUpdate(loanID string) *BusinessError {
	return NewBusinessError(
		KindStateConflict,
		ErrCodeConcurrentUpdate,
		fmt.Sprintf("Loan with ID %s was modified by another operation", loanID),
		ErrConcurrentUpdate,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		KindInternal,
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		KindInternal,
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
