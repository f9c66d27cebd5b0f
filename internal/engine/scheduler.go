package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xela07ax/loan-origination-engine/internal/domain"
)

// StatsSource нужен планировщику только для периодического статус-репорта
type StatsSource interface {
	StatusCount(ctx context.Context) (domain.StatusCount, error)
}

// Scheduler периодически дергает RunPass и раз в 5 минут пишет в лог
// гистограмму статусов. Каденс — внешняя конфигурация, сам движок про
// расписание не знает.
type Scheduler struct {
	processor *Processor
	stats     StatsSource
	logger    *zap.Logger
	interval  time.Duration
	wg        sync.WaitGroup
}

func NewScheduler(processor *Processor, stats StatsSource, logger *zap.Logger, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Scheduler{
		processor: processor,
		stats:     stats,
		logger:    logger.Named("scheduler"),
		interval:  interval,
	}
}

// Start запускает фоновые циклы. Остановка — отменой ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(2)
	go s.passLoop(ctx)
	go s.reportLoop(ctx)
}

// Wait блокируется до завершения текущего прохода после отмены ctx.
// Принудительного обрыва посреди записи в БД нет: RunPass сам замечает
// отмену на границах шагов.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) passLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("loan processing scheduler started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.processor.RunPass(ctx)
		}
	}
}

func (s *Scheduler) reportLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			counts, err := s.stats.StatusCount(ctx)
			if err != nil {
				s.logger.Error("status report failed", zap.Error(err))
				continue
			}
			fields := make([]zap.Field, 0, len(counts))
			for status, n := range counts {
				fields = append(fields, zap.Int64(string(status), n))
			}
			s.logger.Info("system status report", fields...)
		}
	}
}
