package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xela07ax/loan-origination-engine/internal/domain"
)

type stubLoanService struct {
	loan *domain.Loan
	err  error
}

func (s *stubLoanService) SubmitApplication(_ context.Context, name, phone string, amount decimal.Decimal, loanType domain.LoanType) (*domain.Loan, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Loan{
		LoanID:        "LOAN-ABC12345",
		CustomerName:  name,
		CustomerPhone: phone,
		Amount:        amount,
		Type:          loanType,
		Status:        domain.StatusApplied,
	}, nil
}

func (s *stubLoanService) GetByLoanID(_ context.Context, _ string) (*domain.Loan, error) {
	return s.loan, s.err
}

func (s *stubLoanService) ListByStatus(_ context.Context, _ domain.LoanStatus, _, _ int) ([]*domain.Loan, error) {
	return []*domain.Loan{}, s.err
}

func (s *stubLoanService) StatusCount(_ context.Context) (domain.StatusCount, error) {
	return domain.StatusCount{}, s.err
}

func (s *stubLoanService) TopCustomers(_ context.Context) ([]domain.TopCustomer, error) {
	return []domain.TopCustomer{}, s.err
}

func loanRouter(svc LoanService) *chi.Mux {
	h := NewLoanHandler(svc)
	r := chi.NewRouter()
	r.Post("/v1/loans", h.Submit)
	r.Get("/v1/loans", h.List)
	r.Get("/v1/loans/{loanID}", h.Get)
	return r
}

func TestSubmit_CreatesLoan(t *testing.T) {
	r := loanRouter(&stubLoanService{})

	body := `{"customer_name":"John Smith","customer_phone":"+15551234567","amount":"5000","loan_type":"PERSONAL"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/loans", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var loan domain.Loan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loan))
	assert.Equal(t, "LOAN-ABC12345", loan.LoanID)
	assert.Equal(t, domain.StatusApplied, loan.Status)
}

func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing name", `{"customer_phone":"+15551234567","amount":"5000","loan_type":"PERSONAL"}`},
		{"bad phone", `{"customer_name":"John","customer_phone":"abc","amount":"5000","loan_type":"PERSONAL"}`},
		{"zero amount", `{"customer_name":"John","customer_phone":"+15551234567","amount":"0","loan_type":"PERSONAL"}`},
		{"negative amount", `{"customer_name":"John","customer_phone":"+15551234567","amount":"-10","loan_type":"PERSONAL"}`},
		{"unknown type", `{"customer_name":"John","customer_phone":"+15551234567","amount":"5000","loan_type":"YACHT"}`},
	}

	r := loanRouter(&stubLoanService{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/loans", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGet_NotFoundMapsTo404(t *testing.T) {
	r := loanRouter(&stubLoanService{err: domain.ErrLoanNotFound})

	req := httptest.NewRequest(http.MethodGet, "/v1/loans/LOAN-MISSING", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestList_RejectsUnknownStatus(t *testing.T) {
	r := loanRouter(&stubLoanService{})

	req := httptest.NewRequest(http.MethodGet, "/v1/loans?status=LOST", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWriteError_Taxonomy(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{domain.ErrLoanNotFound, http.StatusNotFound},
		{domain.ErrAgentNotFound, http.StatusNotFound},
		{domain.ErrNotAuthorized, http.StatusForbidden},
		{domain.ErrInvalidState, http.StatusConflict},
		{domain.ErrInvalidDecision, http.StatusBadRequest},
		{assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		writeError(rec, tt.err)
		assert.Equal(t, tt.code, rec.Code, "error %v", tt.err)
	}
}
