package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/xela07ax/loan-origination-engine/internal/domain"
	"github.com/xela07ax/loan-origination-engine/internal/infra/auth"
)

type AgentService interface {
	ApplyDecision(ctx context.Context, agentID, loanID string, decision domain.AgentDecision, reason string) (*domain.Loan, error)
	GetAgent(ctx context.Context, agentID string) (*domain.Agent, error)
	ListAgents(ctx context.Context, status domain.AgentStatus) ([]*domain.Agent, error)
	CreateAgent(ctx context.Context, agent *domain.Agent) error
}

type AgentHandler struct {
	service AgentService
}

func NewAgentHandler(s AgentService) *AgentHandler {
	return &AgentHandler{service: s}
}

type DecisionRequest struct {
	Decision domain.AgentDecision `json:"decision"`
	Reason   string               `json:"reason,omitempty"`
}

// Decide — прием решения агента по заявке на ревью.
// Идентичность берем из токена: агент может решать только от своего имени,
// даже если в пути стоит чужой agentID.
func (h *AgentHandler) Decide(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")
	loanID := chi.URLParam(r, "loanID")

	tokenAgent, ok := auth.AgentFromContext(r.Context())
	if !ok || tokenAgent != agentID {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "token does not belong to this agent"})
		return
	}

	var req DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	loan, err := h.service.ApplyDecision(r.Context(), agentID, loanID, req.Decision, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "Decision processed successfully",
		"loan_id":  loan.LoanID,
		"agent_id": agentID,
		"status":   string(loan.Status),
	})
}

func (h *AgentHandler) Get(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")

	agent, err := h.service.GetAgent(r.Context(), agentID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, agent)
}

func (h *AgentHandler) List(w http.ResponseWriter, r *http.Request) {
	status := domain.AgentStatus(r.URL.Query().Get("status"))
	if status != "" && !status.IsValid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown agent status"})
		return
	}

	agents, err := h.service.ListAgents(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, agents)
}

type CreateAgentRequest struct {
	AgentID         string   `json:"agent_id"`
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone,omitempty"`
	MaxLoanAmount   *string  `json:"max_loan_amount,omitempty"`
	Specializations []string `json:"specializations,omitempty"`
	ManagerID       *string  `json:"manager_id,omitempty"`
}

func (h *AgentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.AgentID == "" || req.Name == "" || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "agent_id, name and email are required"})
		return
	}

	agent := &domain.Agent{
		AgentID:         req.AgentID,
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Status:          domain.AgentActive,
		Specializations: req.Specializations,
		ManagerID:       req.ManagerID,
	}
	if req.MaxLoanAmount != nil {
		d, err := parseAmount(*req.MaxLoanAmount)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid max_loan_amount"})
			return
		}
		agent.MaxLoanAmount = d
	}

	if err := h.service.CreateAgent(r.Context(), agent); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, agent)
}

func parseAmount(s string) (*decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
