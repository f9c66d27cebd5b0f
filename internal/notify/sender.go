package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Sender определяет внешний канал доставки (SMS-шлюз, push-провайдер).
type Sender interface {
	Send(ctx context.Context, n Notice) error
}

// LogSender — mock-канал: вместо реальной отправки пишет человекочитаемое
// сообщение в лог. Формат повторяет то, что увидит получатель.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger.Named("notify-mock")}
}

func (s *LogSender) Send(_ context.Context, n Notice) error {
	amount := fmt.Sprintf("$%s", n.Amount.StringFixed(2))

	switch n.Kind {
	case KindAssignment:
		s.logger.Info("[PUSH NOTIFICATION] loan assignment",
			zap.String("agent", n.AgentName),
			zap.String("agent_email", n.AgentEmail),
			zap.String("loan_id", n.LoanID),
			zap.String("customer", n.CustomerName),
			zap.String("amount", amount),
			zap.String("type", string(n.LoanType)),
		)
	case KindManagerNotice:
		s.logger.Info("[PUSH NOTIFICATION] manager notice",
			zap.String("manager", n.ManagerName),
			zap.String("manager_email", n.ManagerEmail),
			zap.String("agent", n.AgentName),
			zap.String("loan_id", n.LoanID),
			zap.String("customer", n.CustomerName),
			zap.String("amount", amount),
		)
	case KindApproval:
		s.logger.Info("[SMS] loan approved",
			zap.String("customer", n.CustomerName),
			zap.String("phone", n.CustomerPhone),
			zap.String("loan_id", n.LoanID),
			zap.String("status", string(n.Status)),
			zap.String("amount", amount),
		)
	case KindRejection:
		reason := n.Reason
		if reason == "" {
			reason = "No specific reason provided"
		}
		s.logger.Info("[SMS] loan rejected",
			zap.String("customer", n.CustomerName),
			zap.String("phone", n.CustomerPhone),
			zap.String("loan_id", n.LoanID),
			zap.String("amount", amount),
			zap.String("reason", reason),
		)
	case KindProcessingStarted:
		s.logger.Info("[SYSTEM] loan processing started",
			zap.String("loan_id", n.LoanID),
			zap.String("customer", n.CustomerName),
			zap.String("amount", amount),
		)
	case KindProcessingCompleted:
		s.logger.Info("[SYSTEM] loan processing completed",
			zap.String("loan_id", n.LoanID),
			zap.String("customer", n.CustomerName),
			zap.String("status", string(n.Status)),
			zap.String("amount", amount),
		)
	default:
		return fmt.Errorf("notify: unknown notice kind %q", n.Kind)
	}
	return nil
}
