package service

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xela07ax/loan-origination-engine/internal/domain"
	"github.com/xela07ax/loan-origination-engine/internal/notify"
)

type fakeLoanStore struct {
	loan *domain.Loan

	updatedLoanID string
	updatedStatus domain.LoanStatus
	updatedReason string
	updateErr     error
}

func (s *fakeLoanStore) FindByLoanID(_ context.Context, loanID string) (*domain.Loan, error) {
	if s.loan == nil || s.loan.LoanID != loanID {
		return nil, domain.ErrLoanNotFound
	}
	cp := *s.loan
	return &cp, nil
}

func (s *fakeLoanStore) UpdateDecision(_ context.Context, loanID string, status domain.LoanStatus, reason string) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updatedLoanID = loanID
	s.updatedStatus = status
	s.updatedReason = reason
	return nil
}

type fakeAgentRepo struct {
	agents map[string]*domain.Agent
}

func (r *fakeAgentRepo) Create(_ context.Context, agent *domain.Agent) error {
	if r.agents == nil {
		r.agents = make(map[string]*domain.Agent)
	}
	r.agents[agent.AgentID] = agent
	return nil
}

func (r *fakeAgentRepo) GetByAgentID(_ context.Context, agentID string) (*domain.Agent, error) {
	a, ok := r.agents[agentID]
	if !ok {
		return nil, domain.ErrAgentNotFound
	}
	return a, nil
}

func (r *fakeAgentRepo) ListByStatus(_ context.Context, _ domain.AgentStatus) ([]*domain.Agent, error) {
	return nil, nil
}

type capturePublisher struct {
	mu      sync.Mutex
	notices []notify.Notice
}

func (p *capturePublisher) Publish(n notify.Notice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notices = append(p.notices, n)
}

type captureSignaler struct {
	loanID string
	status domain.LoanStatus
}

func (s *captureSignaler) SignalDecision(_ context.Context, loanID string, status domain.LoanStatus) {
	s.loanID = loanID
	s.status = status
}

func reviewLoan(agentID string) *domain.Loan {
	return &domain.Loan{
		LoanID:          "LOAN-ABC12345",
		CustomerName:    "John Smith",
		CustomerPhone:   "+15551234567",
		Amount:          decimal.RequireFromString("60000"),
		Type:            domain.TypeAuto,
		Status:          domain.StatusUnderReview,
		AssignedAgentID: &agentID,
	}
}

func newTestAgentService(loans *fakeLoanStore, pub *capturePublisher, sig *captureSignaler) *AgentService {
	return NewAgentService(loans, &fakeAgentRepo{}, pub, sig, zap.NewNop())
}

func TestApplyDecision_Approve(t *testing.T) {
	loans := &fakeLoanStore{loan: reviewLoan("AGENT-003")}
	pub := &capturePublisher{}
	sig := &captureSignaler{}
	svc := newTestAgentService(loans, pub, sig)

	loan, err := svc.ApplyDecision(context.Background(), "AGENT-003", "LOAN-ABC12345", domain.DecisionApprove, "Income verified")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusApprovedByAgent, loan.Status)
	require.NotNil(t, loan.DecisionReason)
	assert.Equal(t, "Income verified", *loan.DecisionReason)

	assert.Equal(t, "LOAN-ABC12345", loans.updatedLoanID)
	assert.Equal(t, domain.StatusApprovedByAgent, loans.updatedStatus)

	require.Len(t, pub.notices, 1)
	assert.Equal(t, notify.KindApproval, pub.notices[0].Kind)
	assert.Equal(t, domain.StatusApprovedByAgent, sig.status)
}

func TestApplyDecision_RejectUsesDefaultReason(t *testing.T) {
	loans := &fakeLoanStore{loan: reviewLoan("AGENT-003")}
	pub := &capturePublisher{}
	svc := newTestAgentService(loans, pub, &captureSignaler{})

	loan, err := svc.ApplyDecision(context.Background(), "AGENT-003", "LOAN-ABC12345", domain.DecisionReject, "")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusRejectedByAgent, loan.Status)
	assert.Equal(t, "Decision made by agent: REJECT", loans.updatedReason)

	require.Len(t, pub.notices, 1)
	assert.Equal(t, notify.KindRejection, pub.notices[0].Kind)
}

func TestApplyDecision_UnknownDecision(t *testing.T) {
	loans := &fakeLoanStore{loan: reviewLoan("AGENT-003")}
	svc := newTestAgentService(loans, &capturePublisher{}, &captureSignaler{})

	_, err := svc.ApplyDecision(context.Background(), "AGENT-003", "LOAN-ABC12345", "MAYBE", "")
	assert.ErrorIs(t, err, domain.ErrInvalidDecision)
	assert.Empty(t, loans.updatedLoanID)
}

func TestApplyDecision_LoanNotFound(t *testing.T) {
	svc := newTestAgentService(&fakeLoanStore{}, &capturePublisher{}, &captureSignaler{})

	_, err := svc.ApplyDecision(context.Background(), "AGENT-003", "LOAN-MISSING", domain.DecisionApprove, "")
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}

func TestApplyDecision_WrongAgent(t *testing.T) {
	loans := &fakeLoanStore{loan: reviewLoan("AGENT-003")}
	pub := &capturePublisher{}
	svc := newTestAgentService(loans, pub, &captureSignaler{})

	_, err := svc.ApplyDecision(context.Background(), "AGENT-004", "LOAN-ABC12345", domain.DecisionApprove, "")
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)
	assert.Empty(t, loans.updatedLoanID)
	assert.Empty(t, pub.notices)
}

// Терминальные статусы поглощающие: повторное решение отклоняется
func TestApplyDecision_AlreadyDecided(t *testing.T) {
	loan := reviewLoan("AGENT-003")
	loan.Status = domain.StatusApprovedByAgent
	loans := &fakeLoanStore{loan: loan}
	svc := newTestAgentService(loans, &capturePublisher{}, &captureSignaler{})

	_, err := svc.ApplyDecision(context.Background(), "AGENT-003", "LOAN-ABC12345", domain.DecisionReject, "")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Empty(t, loans.updatedLoanID)
}

// Проигрыш гонки на условном UPDATE: ошибка хранилища уходит наверх,
// уведомление не публикуется
func TestApplyDecision_ConcurrentLoss(t *testing.T) {
	loans := &fakeLoanStore{loan: reviewLoan("AGENT-003"), updateErr: domain.ErrInvalidState}
	pub := &capturePublisher{}
	sig := &captureSignaler{}
	svc := newTestAgentService(loans, pub, sig)

	_, err := svc.ApplyDecision(context.Background(), "AGENT-003", "LOAN-ABC12345", domain.DecisionApprove, "")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Empty(t, pub.notices)
	assert.Empty(t, sig.loanID)
}

func TestListAgents_NeverReturnsNil(t *testing.T) {
	svc := NewAgentService(&fakeLoanStore{}, &fakeAgentRepo{}, &capturePublisher{}, nil, zap.NewNop())

	agents, err := svc.ListAgents(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, agents)
	assert.Empty(t, agents)
}
