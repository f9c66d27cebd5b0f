package engine

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xela07ax/loan-origination-engine/internal/domain"
	"github.com/xela07ax/loan-origination-engine/internal/notify"
)

// LoanStore — требования движка к хранилищу заявок.
// Хранилище считается durable и строго консистентным в пределах строки.
type LoanStore interface {
	// Заявки в статусе APPLIED без назначенного агента
	FindReadyForProcessing(ctx context.Context) ([]*domain.Loan, error)
	// Заявки UNDER_REVIEW, которым при обработке не нашлось агента
	FindUnassignedReviews(ctx context.Context) ([]*domain.Loan, error)
	MarkProcessingStarted(ctx context.Context, loanID string, at time.Time) error
	// FinishProcessing пишет статус, причину, назначение и processing_completed_at
	// одним UPDATE — частичной записи "статус есть, назначения нет" не бывает
	FinishProcessing(ctx context.Context, loan *domain.Loan) error
	// AssignAgent назначает агента заявке, оставшейся UNDER_REVIEW без агента
	AssignAgent(ctx context.Context, loanID, agentID string) error
}

// AgentDirectory — справочник агентов (read-only для движка)
type AgentDirectory interface {
	// ACTIVE и с лимитом, покрывающим сумму (или без лимита)
	FindEligible(ctx context.Context, amount decimal.Decimal) ([]*domain.Agent, error)
	GetByAgentID(ctx context.Context, agentID string) (*domain.Agent, error)
}

// DecisionSignaler транслирует терминальные решения наружу (Redis Pub/Sub).
// Сигнал fire-and-forget: сбой доставки не влияет на обработку.
type DecisionSignaler interface {
	SignalDecision(ctx context.Context, loanID string, status domain.LoanStatus)
}

type ProcessorConfig struct {
	Workers int // Размер пула на проход (default 5)

	// Искусственная пауза на заявку, имитация скоринга во внешних системах.
	// В тестах ноль; границы включительные, Max >= Min.
	DelayMin time.Duration
	DelayMax time.Duration
}

// Processor — движок обработки: один RunPass прогоняет все подходящие
// заявки через таблицу правил и назначение агента.
type Processor struct {
	store    LoanStore
	agents   AgentDirectory
	ledger   Ledger
	notifier notify.Publisher
	signaler DecisionSignaler // nil — сигналы не шлем
	metrics  *Metrics
	logger   *zap.Logger
	cfg      ProcessorConfig
}

func NewProcessor(
	store LoanStore,
	agents AgentDirectory,
	ledger Ledger,
	notifier notify.Publisher,
	signaler DecisionSignaler,
	metrics *Metrics,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *Processor {
	if cfg.Workers <= 0 {
		cfg.Workers = 5
	}
	if cfg.DelayMax < cfg.DelayMin {
		cfg.DelayMax = cfg.DelayMin
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Processor{
		store:    store,
		agents:   agents,
		ledger:   ledger,
		notifier: notifier,
		signaler: signaler,
		metrics:  metrics,
		logger:   logger.Named("processor"),
		cfg:      cfg,
	}
}

// RunPass выполняет один проход. Безопасен при параллельном вызове с самим
// собой (каждую заявку защищает Ledger) и на пустом бэклоге (no-op).
// Сбой одной заявки не прерывает остальные.
func (p *Processor) RunPass(ctx context.Context) {
	start := time.Now()
	defer func() {
		p.metrics.PassDuration.Observe(time.Since(start).Seconds())
	}()

	loans, err := p.store.FindReadyForProcessing(ctx)
	if err != nil {
		p.logger.Error("failed to fetch loans ready for processing", zap.Error(err))
		return
	}

	if len(loans) > 0 {
		p.logger.Info("processing pass started", zap.Int("backlog", len(loans)))

		// Ограниченный пул: лишняя работа ждет в канале, а не плодит горутины
		work := make(chan *domain.Loan)
		var wg sync.WaitGroup
		for i := 0; i < p.cfg.Workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for loan := range work {
					p.safeProcess(ctx, loan)
				}
			}()
		}

		for _, loan := range loans {
			work <- loan
		}
		close(work)
		wg.Wait()
	}

	// Подбор «осиротевших» ревью: заявка ушла в UNDER_REVIEW, но агента
	// в тот момент не нашлось. Повторяем только шаг назначения.
	p.reassignOrphanedReviews(ctx)
}

// safeProcess изолирует сбой одной заявки от остального прохода
func (p *Processor) safeProcess(ctx context.Context, loan *domain.Loan) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic while processing loan",
				zap.String("loan_id", loan.LoanID),
				zap.Any("panic", r))
		}
	}()
	p.processLoan(ctx, loan)
}

func (p *Processor) processLoan(ctx context.Context, loan *domain.Loan) {
	// Шаг 1: admission control. Занято — оставляем будущему проходу.
	if !p.ledger.TryAcquire(loan.LoanID) {
		p.metrics.LedgerSkips.Inc()
		return
	}
	// Гарантированное освобождение на любом пути выхода, включая панику
	defer p.ledger.Release(loan.LoanID)

	log := p.logger.With(zap.String("loan_id", loan.LoanID))
	log.Info("starting loan processing",
		zap.String("type", string(loan.Type)),
		zap.String("amount", loan.Amount.String()))

	// Шаг 2: фиксируем старт обработки
	startedAt := time.Now()
	if err := p.store.MarkProcessingStarted(ctx, loan.LoanID, startedAt); err != nil {
		p.metrics.ProcessingErrors.WithLabelValues("persist").Inc()
		log.Error("failed to persist processing start", zap.Error(err))
		return
	}
	loan.ProcessingStartedAt = &startedAt

	// Шаг 3
	p.notifier.Publish(notify.ForLoan(notify.KindProcessingStarted, loan))

	// Шаг 4: окно имитации скоринга. Прерывание по контексту — обычный
	// выход: статус заявки еще APPLIED, следующий проход ее подберет.
	if !p.sleep(ctx) {
		log.Warn("processing interrupted by shutdown")
		return
	}

	// Шаг 5: таблица правил
	status, reason := Evaluate(loan.Amount, loan.Type)
	loan.Status = status
	loan.DecisionReason = &reason

	// Шаг 6: назначение агента для ревью
	var assigned *domain.Agent
	if status == domain.StatusUnderReview {
		assigned = p.pickAgent(ctx, loan)
		if assigned != nil {
			loan.AssignedAgentID = &assigned.AgentID
		} else {
			p.metrics.UnassignedReviews.Inc()
			log.Warn("no eligible agent, review left unassigned")
		}
	}

	// Шаг 7: финальная запись (статус + причина + назначение + completed_at атомарно)
	completedAt := time.Now()
	loan.ProcessingCompletedAt = &completedAt
	if err := p.store.FinishProcessing(ctx, loan); err != nil {
		p.metrics.ProcessingErrors.WithLabelValues("persist").Inc()
		log.Error("failed to persist processing result", zap.Error(err))
		return
	}

	// Шаг 8: уведомления — только после успешной записи
	p.notifier.Publish(notify.ForLoan(notify.KindProcessingCompleted, loan))
	switch {
	case status.IsApproved():
		p.notifier.Publish(notify.ForLoan(notify.KindApproval, loan))
	case status.IsRejected():
		p.notifier.Publish(notify.ForLoan(notify.KindRejection, loan))
	}
	if assigned != nil {
		p.publishAssignment(ctx, loan, assigned)
	}
	if status.IsTerminal() && p.signaler != nil {
		p.signaler.SignalDecision(ctx, loan.LoanID, status)
	}

	p.metrics.LoansProcessed.WithLabelValues(string(status)).Inc()
	log.Info("loan processing completed", zap.String("status", string(status)))
	// Шаг 9: Release — в defer выше
}

// pickAgent запрашивает подходящих агентов и выбирает одного.
// Любой сбой здесь не валит обработку: заявка останется UNDER_REVIEW без агента.
func (p *Processor) pickAgent(ctx context.Context, loan *domain.Loan) *domain.Agent {
	candidates, err := p.agents.FindEligible(ctx, loan.Amount)
	if err != nil {
		p.metrics.ProcessingErrors.WithLabelValues("assign").Inc()
		p.logger.Error("failed to query eligible agents",
			zap.String("loan_id", loan.LoanID), zap.Error(err))
		return nil
	}
	return SelectAgent(candidates, loan)
}

// publishAssignment шлет уведомление агенту и, если у него есть менеджер,
// менеджеру. Менеджера резолвим по id через справочник, не по вложенному
// графу — глубина фиксирована одним уровнем.
func (p *Processor) publishAssignment(ctx context.Context, loan *domain.Loan, agent *domain.Agent) {
	n := notify.ForLoan(notify.KindAssignment, loan)
	n.AgentName = agent.Name
	n.AgentEmail = agent.Email
	p.notifier.Publish(n)

	if agent.ManagerID == nil {
		return
	}
	manager, err := p.agents.GetByAgentID(ctx, *agent.ManagerID)
	if err != nil {
		p.logger.Warn("manager lookup failed, manager notice skipped",
			zap.String("agent_id", agent.AgentID),
			zap.String("manager_id", *agent.ManagerID),
			zap.Error(err))
		return
	}

	m := notify.ForLoan(notify.KindManagerNotice, loan)
	m.AgentName = agent.Name
	m.AgentEmail = agent.Email
	m.ManagerName = manager.Name
	m.ManagerEmail = manager.Email
	p.notifier.Publish(m)
}

func (p *Processor) reassignOrphanedReviews(ctx context.Context) {
	orphans, err := p.store.FindUnassignedReviews(ctx)
	if err != nil {
		p.logger.Error("failed to fetch unassigned reviews", zap.Error(err))
		return
	}

	for _, loan := range orphans {
		if !p.ledger.TryAcquire(loan.LoanID) {
			continue
		}

		agent := p.pickAgent(ctx, loan)
		if agent == nil {
			p.ledger.Release(loan.LoanID)
			continue
		}

		if err := p.store.AssignAgent(ctx, loan.LoanID, agent.AgentID); err != nil {
			p.metrics.ProcessingErrors.WithLabelValues("assign").Inc()
			p.logger.Error("failed to assign orphaned review",
				zap.String("loan_id", loan.LoanID), zap.Error(err))
			p.ledger.Release(loan.LoanID)
			continue
		}

		loan.AssignedAgentID = &agent.AgentID
		p.publishAssignment(ctx, loan, agent)
		p.logger.Info("orphaned review assigned",
			zap.String("loan_id", loan.LoanID),
			zap.String("agent_id", agent.AgentID))
		p.ledger.Release(loan.LoanID)
	}
}

// sleep ждет сконфигурированную паузу; false — контекст отменили раньше
func (p *Processor) sleep(ctx context.Context) bool {
	delay := p.cfg.DelayMin
	if jitter := p.cfg.DelayMax - p.cfg.DelayMin; jitter > 0 {
		delay += time.Duration(rand.Int63n(int64(jitter) + 1))
	}
	if delay <= 0 {
		return ctx.Err() == nil
	}

	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
