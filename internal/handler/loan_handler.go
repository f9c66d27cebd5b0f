package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/xela07ax/loan-origination-engine/internal/domain"
)

// LoanService Описываем, что нам нужно от сервиса
type LoanService interface {
	SubmitApplication(ctx context.Context, customerName, customerPhone string, amount decimal.Decimal, loanType domain.LoanType) (*domain.Loan, error)
	GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error)
	ListByStatus(ctx context.Context, status domain.LoanStatus, page, size int) ([]*domain.Loan, error)
	StatusCount(ctx context.Context) (domain.StatusCount, error)
	TopCustomers(ctx context.Context) ([]domain.TopCustomer, error)
}

type LoanHandler struct {
	service LoanService
}

func NewLoanHandler(s LoanService) *LoanHandler {
	return &LoanHandler{service: s}
}

var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

type SubmitLoanRequest struct {
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	Amount        decimal.Decimal `json:"amount"`
	LoanType      domain.LoanType `json:"loan_type"`
}

func (r *SubmitLoanRequest) validate() string {
	switch {
	case r.CustomerName == "" || len(r.CustomerName) > 100:
		return "customer_name is required (max 100 chars)"
	case !phonePattern.MatchString(r.CustomerPhone):
		return "customer_phone has invalid format"
	case !r.Amount.IsPositive():
		return "amount must be greater than 0"
	case !r.LoanType.IsValid():
		return "loan_type must be one of PERSONAL, HOME, AUTO, BUSINESS"
	}
	return ""
}

func (h *LoanHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	loan, err := h.service.SubmitApplication(r.Context(), req.CustomerName, req.CustomerPhone, req.Amount, req.LoanType)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, loan)
}

func (h *LoanHandler) Get(w http.ResponseWriter, r *http.Request) {
	loanID := chi.URLParam(r, "loanID")

	loan, err := h.service.GetByLoanID(r.Context(), loanID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loan)
}

func (h *LoanHandler) List(w http.ResponseWriter, r *http.Request) {
	status := domain.LoanStatus(r.URL.Query().Get("status"))
	if !status.IsValid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown status"})
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))

	loans, err := h.service.ListByStatus(r.Context(), status, page, size)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loans)
}

func (h *LoanHandler) StatusCount(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.StatusCount(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (h *LoanHandler) TopCustomers(w http.ResponseWriter, r *http.Request) {
	top, err := h.service.TopCustomers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, top)
}
