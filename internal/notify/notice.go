package notify

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xela07ax/loan-origination-engine/internal/domain"
)

// Kind — тип исходящего уведомления
type Kind string

const (
	KindProcessingStarted   Kind = "PROCESSING_STARTED"
	KindProcessingCompleted Kind = "PROCESSING_COMPLETED"
	KindAssignment          Kind = "ASSIGNMENT"      // Агенту: вам назначена заявка
	KindManagerNotice       Kind = "MANAGER_NOTICE"  // Менеджеру: подчиненному назначена заявка
	KindApproval            Kind = "APPROVAL"        // Клиенту (SMS): одобрено
	KindRejection           Kind = "REJECTION"       // Клиенту (SMS): отклонено + причина
)

// Notice — намерение отправить уведомление. Ядро формирует его и забывает:
// доставка — забота диспетчера и внешнего канала, сбой доставки
// никогда не считается сбоем обработки заявки.
type Notice struct {
	Kind Kind

	LoanID        string
	CustomerName  string
	CustomerPhone string
	Amount        decimal.Decimal
	LoanType      domain.LoanType
	Status        domain.LoanStatus
	Reason        string

	// Для ASSIGNMENT / MANAGER_NOTICE
	AgentName    string
	AgentEmail   string
	ManagerName  string
	ManagerEmail string

	At time.Time
}

// ForLoan заполняет общие поля из заявки
func ForLoan(kind Kind, loan *domain.Loan) Notice {
	n := Notice{
		Kind:          kind,
		LoanID:        loan.LoanID,
		CustomerName:  loan.CustomerName,
		CustomerPhone: loan.CustomerPhone,
		Amount:        loan.Amount,
		LoanType:      loan.Type,
		Status:        loan.Status,
		At:            time.Now(),
	}
	if loan.DecisionReason != nil {
		n.Reason = *loan.DecisionReason
	}
	return n
}
