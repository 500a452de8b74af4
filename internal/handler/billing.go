package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/segyhp/lending-ledger/internal/domain"
	"github.com/segyhp/lending-ledger/internal/penalty"
	customError "github.com/segyhp/lending-ledger/pkg/errors"
	"github.com/segyhp/lending-ledger/pkg/response"
)

// LedgerService is the set of ledger operations exposed over HTTP.
type LedgerService interface {
	CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, error)
	GetLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error)
	GetSchedule(ctx context.Context, loanID uuid.UUID) ([]*domain.Installment, error)
	GetOutstanding(ctx context.Context, loanID uuid.UUID) (*domain.OutstandingResponse, error)
	PreviewPenalties(ctx context.Context, loanID uuid.UUID, asOf string) ([]penalty.Line, error)
	ReviseLoanTerms(ctx context.Context, loanID uuid.UUID, request *domain.ReviseLoanTermsRequest) (*domain.Loan, error)
	CancelLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error)
	ArchiveLoan(ctx context.Context, loanID uuid.UUID, archived bool) (*domain.Loan, error)
	MakePayment(ctx context.Context, loanID, installmentID uuid.UUID, request domain.PaymentRequest) (*domain.Loan, *domain.Receipt, error)
	GetReceipts(ctx context.Context, loanID uuid.UUID) ([]*domain.Receipt, error)
	CloseRoute(ctx context.Context, collectorID string, businessDate string) (*domain.RouteClosing, error)
	GetLatestClosing(ctx context.Context, collectorID string) (*domain.RouteClosing, error)
}

type BillingHandler struct {
	service   LedgerService
	validator *validator.Validate
}

func NewBillingHandler(service LedgerService) *BillingHandler {
	v := validator.New()
	// decimal.Decimal is validated by its numeric value so gt/gte tags apply.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	return &BillingHandler{
		service:   service,
		validator: v,
	}
}

// RegisterRoutes mounts the ledger endpoints on r.
func (h *BillingHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/loans", h.CreateLoan).Methods(http.MethodPost)
	r.HandleFunc("/loans/{loanId}", h.GetLoan).Methods(http.MethodGet)
	r.HandleFunc("/loans/{loanId}/schedule", h.GetSchedule).Methods(http.MethodGet)
	r.HandleFunc("/loans/{loanId}/outstanding", h.GetOutstanding).Methods(http.MethodGet)
	r.HandleFunc("/loans/{loanId}/penalties", h.PreviewPenalties).Methods(http.MethodGet)
	r.HandleFunc("/loans/{loanId}/terms", h.ReviseTerms).Methods(http.MethodPut)
	r.HandleFunc("/loans/{loanId}/cancel", h.CancelLoan).Methods(http.MethodPost)
	r.HandleFunc("/loans/{loanId}/archive", h.ArchiveLoan).Methods(http.MethodPost)
	r.HandleFunc("/loans/{loanId}/installments/{installmentId}/payments", h.MakePayment).Methods(http.MethodPost)
	r.HandleFunc("/loans/{loanId}/receipts", h.GetReceipts).Methods(http.MethodGet)
	r.HandleFunc("/collectors/{collectorId}/closings", h.CloseRoute).Methods(http.MethodPost)
	r.HandleFunc("/collectors/{collectorId}/closings/latest", h.GetLatestClosing).Methods(http.MethodGet)
}

// CreateLoan handles POST /loans
func (h *BillingHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateLoanRequest
	if !h.decode(w, r, &request) {
		return
	}

	loan, err := h.service.CreateLoan(r.Context(), &request)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, loan)
}

// GetLoan handles GET /loans/{loanId}
func (h *BillingHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathUUID(w, r, "loanId")
	if !ok {
		return
	}

	loan, err := h.service.GetLoan(r.Context(), loanID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, loan)
}

// GetSchedule handles GET /loans/{loanId}/schedule
func (h *BillingHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathUUID(w, r, "loanId")
	if !ok {
		return
	}

	schedule, err := h.service.GetSchedule(r.Context(), loanID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, domain.ScheduleResponse{LoanID: loanID, Schedule: schedule})
}

// GetOutstanding handles GET /loans/{loanId}/outstanding
func (h *BillingHandler) GetOutstanding(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathUUID(w, r, "loanId")
	if !ok {
		return
	}

	outstanding, err := h.service.GetOutstanding(r.Context(), loanID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, outstanding)
}

// PreviewPenalties handles GET /loans/{loanId}/penalties?as_of=YYYY-MM-DD
func (h *BillingHandler) PreviewPenalties(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathUUID(w, r, "loanId")
	if !ok {
		return
	}

	lines, err := h.service.PreviewPenalties(r.Context(), loanID, r.URL.Query().Get("as_of"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, lines)
}

// ReviseTerms handles PUT /loans/{loanId}/terms
func (h *BillingHandler) ReviseTerms(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathUUID(w, r, "loanId")
	if !ok {
		return
	}

	var request domain.ReviseLoanTermsRequest
	if !h.decode(w, r, &request) {
		return
	}

	loan, err := h.service.ReviseLoanTerms(r.Context(), loanID, &request)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, loan)
}

// CancelLoan handles POST /loans/{loanId}/cancel
func (h *BillingHandler) CancelLoan(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathUUID(w, r, "loanId")
	if !ok {
		return
	}

	loan, err := h.service.CancelLoan(r.Context(), loanID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, loan)
}

// ArchiveLoan handles POST /loans/{loanId}/archive, ?undo=true restores it
func (h *BillingHandler) ArchiveLoan(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathUUID(w, r, "loanId")
	if !ok {
		return
	}

	archived := true
	if undo := r.URL.Query().Get("undo"); undo != "" {
		parsed, err := strconv.ParseBool(undo)
		if err != nil {
			response.FromError(w, customError.WrapInvalidRequest(err))
			return
		}
		archived = !parsed
	}

	loan, err := h.service.ArchiveLoan(r.Context(), loanID, archived)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, loan)
}

// MakePayment handles POST /loans/{loanId}/installments/{installmentId}/payments
func (h *BillingHandler) MakePayment(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathUUID(w, r, "loanId")
	if !ok {
		return
	}
	installmentID, ok := pathUUID(w, r, "installmentId")
	if !ok {
		return
	}

	// An empty body pays the installment's remaining due.
	var request domain.MakePaymentRequest
	if r.Body != nil && r.Body != http.NoBody && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil && !errors.Is(err, io.EOF) {
			response.BadRequest(w, "invalid request body", err)
			return
		}
	}

	loan, receipt, err := h.service.MakePayment(r.Context(), loanID, installmentID, request.ToPaymentRequest())
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, domain.MakePaymentResponse{Loan: loan, Receipt: receipt})
}

// GetReceipts handles GET /loans/{loanId}/receipts
func (h *BillingHandler) GetReceipts(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathUUID(w, r, "loanId")
	if !ok {
		return
	}

	receipts, err := h.service.GetReceipts(r.Context(), loanID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, receipts)
}

// CloseRoute handles POST /collectors/{collectorId}/closings
func (h *BillingHandler) CloseRoute(w http.ResponseWriter, r *http.Request) {
	collectorID := mux.Vars(r)["collectorId"]

	var request domain.CloseRouteRequest
	if !h.decode(w, r, &request) {
		return
	}

	closing, err := h.service.CloseRoute(r.Context(), collectorID, request.Date)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, closing)
}

// GetLatestClosing handles GET /collectors/{collectorId}/closings/latest
func (h *BillingHandler) GetLatestClosing(w http.ResponseWriter, r *http.Request) {
	closing, err := h.service.GetLatestClosing(r.Context(), mux.Vars(r)["collectorId"])
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, closing)
}

func (h *BillingHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		response.FromError(w, customError.WrapInvalidRequest(err))
		return false
	}
	return true
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.BadRequest(w, "invalid "+name, err)
		return uuid.Nil, false
	}
	return id, true
}
