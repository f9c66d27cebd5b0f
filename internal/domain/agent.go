package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type AgentStatus string

const (
	AgentActive    AgentStatus = "ACTIVE"    // Доступен для назначения заявок
	AgentInactive  AgentStatus = "INACTIVE"  // Временно недоступен
	AgentSuspended AgentStatus = "SUSPENDED" // Отстранен администратором
)

func (s AgentStatus) IsValid() bool {
	switch s {
	case AgentActive, AgentInactive, AgentSuspended:
		return true
	}
	return false
}

type Agent struct {
	ID      int64       `json:"id"`       // Суррогатный ключ БД
	AgentID string      `json:"agent_id"` // Внешний идентификатор (AGENT-NNN)
	Name    string      `json:"name"`
	Email   string      `json:"email"` // Уникальный контакт
	Phone   string      `json:"phone,omitempty"`
	Status  AgentStatus `json:"status"`

	// nil — агент берет заявки на любую сумму
	MaxLoanAmount *decimal.Decimal `json:"max_loan_amount,omitempty"`

	// Список категорий-специализаций (PERSONAL, HOME, AUTO, BUSINESS).
	// Пустой список — универсал.
	Specializations []string `json:"specializations"`

	// Ссылка на менеджера по agent_id (arena-модель, не вложенный граф).
	// nil — агент верхнего уровня.
	ManagerID *string `json:"manager_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Specializes проверяет специализацию на категорию кредита.
// Сопоставление нестрогое: регистронезависимое вхождение токена,
// чтобы "AUTO_LOANS" тоже считался специализацией по AUTO.
func (a *Agent) Specializes(t LoanType) bool {
	want := strings.ToLower(string(t))
	for _, s := range a.Specializations {
		if strings.Contains(strings.ToLower(s), want) {
			return true
		}
	}
	return false
}
