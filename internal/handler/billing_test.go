package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/lending-ledger/internal/domain"
	"github.com/segyhp/lending-ledger/internal/mocks"
	"github.com/segyhp/lending-ledger/internal/penalty"
	customError "github.com/segyhp/lending-ledger/pkg/errors"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
	Kind    string          `json:"kind"`
	Error   string          `json:"error"`
}

func setup(t *testing.T) (*mocks.MockLedgerService, *mux.Router) {
	t.Helper()
	svc := mocks.NewMockLedgerService()
	router := mux.NewRouter()
	NewBillingHandler(svc).RegisterRoutes(router)
	t.Cleanup(func() { svc.AssertExpectations(t) })
	return svc, router
}

func serve(router http.Handler, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func TestBillingHandler_CreateLoan(t *testing.T) {
	svc, router := setup(t)
	loan := &domain.Loan{ID: uuid.New(), ClientID: "client-1", Status: domain.LoanStatusActive}

	svc.On("CreateLoan", mock.Anything, mock.MatchedBy(func(r *domain.CreateLoanRequest) bool {
		return r.ClientID == "client-1" && r.Amount.Equal(decimal.NewFromInt(10000)) && r.Term == 12
	})).Return(loan, nil)

	body := `{"client_id":"client-1","amount":"10000","rate":"20","term":12,"frequency":"MONTHLY","start_date":"2024-01-01","amortization_type":"FRENCH"}`
	rec, env := serve(router, http.MethodPost, "/loans", body)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)

	var got domain.Loan
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, loan.ID, got.ID)
}

func TestBillingHandler_CreateLoan_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero amount", `{"client_id":"c","amount":"0","rate":"20","term":12,"frequency":"MONTHLY","start_date":"2024-01-01","amortization_type":"FRENCH"}`},
		{"negative rate", `{"client_id":"c","amount":"100","rate":"-1","term":12,"frequency":"MONTHLY","start_date":"2024-01-01","amortization_type":"FRENCH"}`},
		{"unknown frequency", `{"client_id":"c","amount":"100","rate":"20","term":12,"frequency":"YEARLY","start_date":"2024-01-01","amortization_type":"FRENCH"}`},
		{"open line", `{"client_id":"c","amount":"100","rate":"20","term":12,"frequency":"MONTHLY","start_date":"2024-01-01","amortization_type":"OPEN"}`},
		{"bad date", `{"client_id":"c","amount":"100","rate":"20","term":12,"frequency":"MONTHLY","start_date":"01/01/2024","amortization_type":"FRENCH"}`},
		{"missing client", `{"amount":"100","rate":"20","term":12,"frequency":"MONTHLY","start_date":"2024-01-01","amortization_type":"FRENCH"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, router := setup(t)
			rec, env := serve(router, http.MethodPost, "/loans", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, customError.ErrCodeInvalidRequest, env.Code)
		})
	}
}

func TestBillingHandler_CreateLoan_MalformedJSON(t *testing.T) {
	_, router := setup(t)
	rec, env := serve(router, http.MethodPost, "/loans", `{"client_id":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
}

func TestBillingHandler_GetLoan(t *testing.T) {
	svc, router := setup(t)
	id := uuid.New()
	svc.On("GetLoan", mock.Anything, id).Return(&domain.Loan{ID: id}, nil)

	rec, env := serve(router, http.MethodGet, "/loans/"+id.String(), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
}

func TestBillingHandler_GetLoan_InvalidID(t *testing.T) {
	_, router := setup(t)
	rec, _ := serve(router, http.MethodGet, "/loans/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBillingHandler_ErrorKindsMapToStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", customError.WrapLoanNotFound("x"), http.StatusNotFound, customError.ErrCodeLoanNotFound},
		{"state conflict", customError.WrapLoanHasPayments("x"), http.StatusConflict, customError.ErrCodeLoanHasPayments},
		{"validation", customError.WrapInvalidPenalty("bad"), http.StatusBadRequest, customError.ErrCodeInvalidPenalty},
		{"internal", customError.WrapDatabaseError(errors.New("pq: secret detail")), http.StatusInternalServerError, customError.ErrCodeDatabaseError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, router := setup(t)
			id := uuid.New()
			svc.On("CancelLoan", mock.Anything, id).Return(nil, tt.err)

			rec, env := serve(router, http.MethodPost, "/loans/"+id.String()+"/cancel", "")
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, env.Code)
			assert.NotContains(t, rec.Body.String(), "secret detail")
		})
	}
}

func TestBillingHandler_GetSchedule(t *testing.T) {
	svc, router := setup(t)
	id := uuid.New()
	schedule := []*domain.Installment{{ID: uuid.New(), LoanID: id, Number: 1}}
	svc.On("GetSchedule", mock.Anything, id).Return(schedule, nil)

	rec, env := serve(router, http.MethodGet, "/loans/"+id.String()+"/schedule", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.ScheduleResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, id, got.LoanID)
	assert.Len(t, got.Schedule, 1)
}

func TestBillingHandler_PreviewPenalties(t *testing.T) {
	svc, router := setup(t)
	id := uuid.New()
	svc.On("PreviewPenalties", mock.Anything, id, "2024-02-05").Return([]penalty.Line{{InstallmentNumber: 1}}, nil)

	rec, _ := serve(router, http.MethodGet, "/loans/"+id.String()+"/penalties?as_of=2024-02-05", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBillingHandler_ReviseTerms(t *testing.T) {
	svc, router := setup(t)
	id := uuid.New()
	svc.On("ReviseLoanTerms", mock.Anything, id, mock.AnythingOfType("*domain.ReviseLoanTermsRequest")).Return(&domain.Loan{ID: id}, nil)

	body := `{"amount":"6000","rate":"12","term":6,"frequency":"WEEKLY","start_date":"2024-02-01","amortization_type":"FLAT"}`
	rec, _ := serve(router, http.MethodPut, "/loans/"+id.String()+"/terms", body)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBillingHandler_ArchiveLoan(t *testing.T) {
	svc, router := setup(t)
	id := uuid.New()
	svc.On("ArchiveLoan", mock.Anything, id, true).Return(&domain.Loan{ID: id, Archived: true}, nil).Once()
	svc.On("ArchiveLoan", mock.Anything, id, false).Return(&domain.Loan{ID: id}, nil).Once()

	rec, _ := serve(router, http.MethodPost, "/loans/"+id.String()+"/archive", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = serve(router, http.MethodPost, "/loans/"+id.String()+"/archive?undo=true", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = serve(router, http.MethodPost, "/loans/"+id.String()+"/archive?undo=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBillingHandler_MakePayment_EmptyBodyPaysRemainingDue(t *testing.T) {
	svc, router := setup(t)
	loanID, instID := uuid.New(), uuid.New()
	receipt := &domain.Receipt{ID: uuid.New(), LoanID: loanID, Amount: decimal.NewFromInt(100)}

	svc.On("MakePayment", mock.Anything, loanID, instID, domain.PaymentRequest{}).
		Return(&domain.Loan{ID: loanID}, receipt, nil)

	rec, env := serve(router, http.MethodPost, "/loans/"+loanID.String()+"/installments/"+instID.String()+"/payments", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var got domain.MakePaymentResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, receipt.ID, got.Receipt.ID)
}

func TestBillingHandler_MakePayment_WithAmountAndPenalty(t *testing.T) {
	svc, router := setup(t)
	loanID, instID := uuid.New(), uuid.New()

	svc.On("MakePayment", mock.Anything, loanID, instID, mock.MatchedBy(func(r domain.PaymentRequest) bool {
		return r.BaseAmount != nil && r.BaseAmount.Equal(decimal.RequireFromString("250.50")) &&
			r.Penalty != nil && r.Penalty.Equal(decimal.NewFromInt(15)) &&
			r.ForcePenalty && r.CollectorID == "col-1"
	})).Return(&domain.Loan{ID: loanID}, &domain.Receipt{}, nil)

	body := `{"amount":"250.50","penalty":"15","force_penalty":true,"collector_id":"col-1"}`
	rec, _ := serve(router, http.MethodPost, "/loans/"+loanID.String()+"/installments/"+instID.String()+"/payments", body)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestBillingHandler_MakePayment_AlreadyPaid(t *testing.T) {
	svc, router := setup(t)
	loanID, instID := uuid.New(), uuid.New()
	svc.On("MakePayment", mock.Anything, loanID, instID, mock.Anything).
		Return(nil, nil, customError.WrapInstallmentAlreadyPaid(1))

	rec, env := serve(router, http.MethodPost, "/loans/"+loanID.String()+"/installments/"+instID.String()+"/payments", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, customError.ErrCodeInstallmentAlreadyPaid, env.Code)
	assert.Equal(t, string(customError.KindStateConflict), env.Kind)
}

func TestBillingHandler_CloseRoute(t *testing.T) {
	svc, router := setup(t)
	closing := &domain.RouteClosing{ID: uuid.New(), CollectorID: "col-1", TotalAmount: decimal.NewFromInt(360), ReceiptsCount: 3}
	svc.On("CloseRoute", mock.Anything, "col-1", "2024-03-05").Return(closing, nil)

	rec, env := serve(router, http.MethodPost, "/collectors/col-1/closings", `{"date":"2024-03-05"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got domain.RouteClosing
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, 3, got.ReceiptsCount)
}

func TestBillingHandler_CloseRoute_MissingDate(t *testing.T) {
	_, router := setup(t)
	rec, _ := serve(router, http.MethodPost, "/collectors/col-1/closings", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBillingHandler_GetLatestClosing_NotFound(t *testing.T) {
	svc, router := setup(t)
	svc.On("GetLatestClosing", mock.Anything, "col-9").Return(nil, customError.WrapClosingNotFound("col-9"))

	rec, _ := serve(router, http.MethodGet, "/collectors/col-9/closings/latest", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBillingHandler_GetReceiptsAndOutstanding(t *testing.T) {
	svc, router := setup(t)
	id := uuid.New()
	svc.On("GetReceipts", mock.Anything, id).Return([]*domain.Receipt{}, nil)
	svc.On("GetOutstanding", mock.Anything, id).Return(&domain.OutstandingResponse{LoanID: id}, nil)

	rec, _ := serve(router, http.MethodGet, "/loans/"+id.String()+"/receipts", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = serve(router, http.MethodGet, "/loans/"+id.String()+"/outstanding", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
