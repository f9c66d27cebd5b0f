package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Статусы State Machine заявки
type LoanStatus string

const (
	StatusApplied          LoanStatus = "APPLIED"            // Начальное состояние после подачи
	StatusApprovedBySystem LoanStatus = "APPROVED_BY_SYSTEM" // Одобрено правилами, терминальный
	StatusRejectedBySystem LoanStatus = "REJECTED_BY_SYSTEM" // Отклонено правилами, терминальный
	StatusUnderReview      LoanStatus = "UNDER_REVIEW"       // Требует решения агента (HITL)
	StatusApprovedByAgent  LoanStatus = "APPROVED_BY_AGENT"  // Одобрено агентом, терминальный
	StatusRejectedByAgent  LoanStatus = "REJECTED_BY_AGENT"  // Отклонено агентом, терминальный
)

func (s LoanStatus) IsApproved() bool {
	return s == StatusApprovedBySystem || s == StatusApprovedByAgent
}

func (s LoanStatus) IsRejected() bool {
	return s == StatusRejectedBySystem || s == StatusRejectedByAgent
}

// IsTerminal — из терминального статуса переходы запрещены
func (s LoanStatus) IsTerminal() bool {
	return s.IsApproved() || s.IsRejected()
}

func (s LoanStatus) IsValid() bool {
	switch s {
	case StatusApplied, StatusApprovedBySystem, StatusRejectedBySystem,
		StatusUnderReview, StatusApprovedByAgent, StatusRejectedByAgent:
		return true
	}
	return false
}

type LoanType string

const (
	TypePersonal LoanType = "PERSONAL"
	TypeHome     LoanType = "HOME"
	TypeAuto     LoanType = "AUTO"
	TypeBusiness LoanType = "BUSINESS"
)

func (t LoanType) IsValid() bool {
	switch t {
	case TypePersonal, TypeHome, TypeAuto, TypeBusiness:
		return true
	}
	return false
}

// AgentDecision — решение агента по заявке в статусе UNDER_REVIEW
type AgentDecision string

const (
	DecisionApprove AgentDecision = "APPROVE"
	DecisionReject  AgentDecision = "REJECT"
)

// ToLoanStatus маппит решение агента в терминальный статус заявки
func (d AgentDecision) ToLoanStatus() (LoanStatus, bool) {
	switch d {
	case DecisionApprove:
		return StatusApprovedByAgent, true
	case DecisionReject:
		return StatusRejectedByAgent, true
	}
	return "", false
}

type Loan struct {
	ID            int64           `json:"id"`             // Суррогатный ключ БД
	LoanID        string          `json:"loan_id"`        // Внешний идентификатор (LOAN-XXXXXXXX)
	CustomerName  string          `json:"customer_name"`  // Имя клиента
	CustomerPhone string          `json:"customer_phone"` // Контакт для SMS-уведомлений
	Amount        decimal.Decimal `json:"amount"`         // Сумма (точная десятичная, без float)
	Type          LoanType        `json:"type"`
	Status        LoanStatus      `json:"status"`

	// Заполняется только когда статус UNDER_REVIEW (или терминальный через агента)
	AssignedAgentID *string `json:"assigned_agent_id,omitempty"`
	DecisionReason  *string `json:"decision_reason,omitempty"`

	ProcessingStartedAt   *time.Time `json:"processing_started_at,omitempty"`
	ProcessingCompletedAt *time.Time `json:"processing_completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
