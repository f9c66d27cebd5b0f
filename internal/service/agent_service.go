package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xela07ax/loan-origination-engine/internal/domain"
	"github.com/xela07ax/loan-origination-engine/internal/notify"
)

// LoanDecisionStore — требования Decision Intake к хранилищу заявок
type LoanDecisionStore interface {
	FindByLoanID(ctx context.Context, loanID string) (*domain.Loan, error)
	// UpdateDecision обязан быть условным (только из UNDER_REVIEW)
	UpdateDecision(ctx context.Context, loanID string, status domain.LoanStatus, reason string) error
}

// AgentRepository описывает требования к справочнику агентов
type AgentRepository interface {
	Create(ctx context.Context, agent *domain.Agent) error
	GetByAgentID(ctx context.Context, agentID string) (*domain.Agent, error)
	ListByStatus(ctx context.Context, status domain.AgentStatus) ([]*domain.Agent, error)
}

// DecisionSignaler — трансляция терминального решения наружу (может быть nil)
type DecisionSignaler interface {
	SignalDecision(ctx context.Context, loanID string, status domain.LoanStatus)
}

// AgentService — агентский контур: прием решений по ревью и справочные операции
type AgentService struct {
	loans    LoanDecisionStore
	agents   AgentRepository
	notifier notify.Publisher
	signaler DecisionSignaler
	logger   *zap.Logger
}

func NewAgentService(
	loans LoanDecisionStore,
	agents AgentRepository,
	notifier notify.Publisher,
	signaler DecisionSignaler,
	logger *zap.Logger,
) *AgentService {
	return &AgentService{
		loans:    loans,
		agents:   agents,
		notifier: notifier,
		signaler: signaler,
		logger:   logger.Named("agent-service"),
	}
}

// ApplyDecision применяет решение агента по заявке на ревью.
// Предусловия проверяются по порядку, побеждает первый сбой:
//  1. заявка существует — иначе ErrLoanNotFound;
//  2. заявка назначена именно этому агенту — иначе ErrNotAuthorized;
//  3. заявка в UNDER_REVIEW — иначе ErrInvalidState (терминальные статусы поглощающие).
//
// Успех возвращается только после успешной записи в хранилище.
func (s *AgentService) ApplyDecision(ctx context.Context, agentID, loanID string, decision domain.AgentDecision, reason string) (*domain.Loan, error) {
	log := s.logger.With(
		zap.String("loan_id", loanID),
		zap.String("agent_id", agentID),
		zap.String("decision", string(decision)))

	newStatus, ok := decision.ToLoanStatus()
	if !ok {
		return nil, domain.ErrInvalidDecision
	}

	loan, err := s.loans.FindByLoanID(ctx, loanID)
	if err != nil {
		log.Warn("decision rejected: loan lookup failed", zap.Error(err))
		return nil, err
	}

	if loan.AssignedAgentID == nil || *loan.AssignedAgentID != agentID {
		log.Warn("decision rejected: loan is assigned to another agent")
		return nil, domain.ErrNotAuthorized
	}

	if loan.Status != domain.StatusUnderReview {
		log.Warn("decision rejected: loan is not under review",
			zap.String("status", string(loan.Status)))
		return nil, domain.ErrInvalidState
	}

	if reason == "" {
		reason = fmt.Sprintf("Decision made by agent: %s", decision)
	}

	// Условный UPDATE в хранилище — синхронизационная граница против
	// параллельного решения по той же заявке
	if err := s.loans.UpdateDecision(ctx, loanID, newStatus, reason); err != nil {
		log.Error("failed to persist agent decision", zap.Error(err))
		return nil, err
	}

	loan.Status = newStatus
	loan.DecisionReason = &reason

	// Уведомление клиенту — после успешной записи, fire-and-forget
	kind := notify.KindRejection
	if newStatus.IsApproved() {
		kind = notify.KindApproval
	}
	s.notifier.Publish(notify.ForLoan(kind, loan))

	if s.signaler != nil {
		s.signaler.SignalDecision(ctx, loanID, newStatus)
	}

	log.Info("agent decision processed", zap.String("status", string(newStatus)))
	return loan, nil
}

func (s *AgentService) GetAgent(ctx context.Context, agentID string) (*domain.Agent, error) {
	agent, err := s.agents.GetByAgentID(ctx, agentID)
	if err != nil {
		s.logger.Error("failed to fetch agent details", zap.String("id", agentID), zap.Error(err))
		return nil, err
	}
	return agent, nil
}

// ListAgents возвращает агентов в заданном статусе (по умолчанию активных)
func (s *AgentService) ListAgents(ctx context.Context, status domain.AgentStatus) ([]*domain.Agent, error) {
	if status == "" {
		status = domain.AgentActive
	}
	agents, err := s.agents.ListByStatus(ctx, status)
	if err != nil {
		s.logger.Error("failed to list agents from repository", zap.Error(err))
		return nil, fmt.Errorf("service: could not fetch agents: %w", err)
	}
	// Гарантируем, что клиент API получит [], а не null
	if agents == nil {
		return []*domain.Agent{}, nil
	}
	return agents, nil
}

func (s *AgentService) CreateAgent(ctx context.Context, agent *domain.Agent) error {
	if !agent.Status.IsValid() {
		agent.Status = domain.AgentActive
	}
	if err := s.agents.Create(ctx, agent); err != nil {
		s.logger.Error("failed to create agent", zap.String("agent_id", agent.AgentID), zap.Error(err))
		return err
	}
	s.logger.Info("agent registered", zap.String("agent_id", agent.AgentID))
	return nil
}
