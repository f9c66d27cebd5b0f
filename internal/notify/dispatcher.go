package notify

/*
Файл dispatcher.go реализует асинхронную доставку уведомлений.

Ядро обработки заявок НЕ ждет доставки: Publish кладет Notice в буферный
канал и сразу возвращается. Отдельный небольшой пул воркеров вычитывает
канал и зовет внешний канал доставки — медленный SMS-шлюз не тормозит
обработку заявок.

- Load Shedding: при переполненном буфере уведомление сбрасывается с
  записью в лог (доставка best-effort по контракту).
- Drain Pattern: Stop закрывает вход и дожидается, пока воркеры вычитают
  остатки буфера — плановый рестарт не теряет уже принятых уведомлений.
*/

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Publisher — то, что видит ядро: положить намерение и забыть
type Publisher interface {
	Publish(n Notice)
}

type DispatcherConfig struct {
	BufferSize int // Емкость очереди (default 50)
	Workers    int // Размер пула доставки (default 2)

	// Опциональные метрики (nil — не снимаем)
	BufferFill prometheus.Gauge
	Dropped    prometheus.Counter
}

type Dispatcher struct {
	ch     chan Notice
	sender Sender
	logger *zap.Logger
	cfg    DispatcherConfig
	wg     sync.WaitGroup

	// Атомарный флаг (0 - открыт, 1 - закрыт): Publish после Stop не должен паниковать
	isClosed int32
}

func NewDispatcher(sender Sender, logger *zap.Logger, cfg DispatcherConfig) *Dispatcher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 50
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	return &Dispatcher{
		ch:     make(chan Notice, cfg.BufferSize),
		sender: sender,
		logger: logger.With(zap.String("mod", "notify")),
		cfg:    cfg,
	}
}

func (d *Dispatcher) Start() {
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

// Stop «запирает» вход и ждет, пока воркеры допишут остатки буфера.
func (d *Dispatcher) Stop() {
	// 1. Сначала ставим флаг, чтобы новые Publish отскакивали
	atomic.StoreInt32(&d.isClosed, 1)

	// 2. Крошечная пауза — текущие Publish успевают проскочить в канал
	time.Sleep(10 * time.Millisecond)

	// 3. Закрываем канал (Drain Pattern): воркеры вычитают остатки и выйдут
	d.logger.Info("stopping dispatcher: closing channel and draining buffer...")
	close(d.ch)
	d.wg.Wait()
	d.logger.Info("dispatcher stopped gracefully")
}

func (d *Dispatcher) Publish(n Notice) {
	if n.At.IsZero() {
		n.At = time.Now()
	}

	if atomic.LoadInt32(&d.isClosed) == 1 {
		d.logger.Warn("notice dropped: dispatcher is stopping",
			zap.String("kind", string(n.Kind)),
			zap.String("loan_id", n.LoanID))
		return
	}

	// Стратегия Load Shedding: переполненный буфер — сбрасываем, а не блокируем ядро
	select {
	case d.ch <- n:
		if d.cfg.BufferFill != nil {
			d.cfg.BufferFill.Set(float64(len(d.ch)))
		}
	default:
		if d.cfg.Dropped != nil {
			d.cfg.Dropped.Inc()
		}
		d.logger.Error("notify_buffer_overflow",
			zap.String("kind", string(n.Kind)),
			zap.String("loan_id", n.LoanID),
		)
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for n := range d.ch {
		if d.cfg.BufferFill != nil {
			d.cfg.BufferFill.Set(float64(len(d.ch)))
		}

		// Background: основной контекст на shutdown уже может быть закрыт,
		// а буфер мы обязались дочитать
		if err := d.sender.Send(context.Background(), n); err != nil {
			d.logger.Error("notice delivery failed",
				zap.String("kind", string(n.Kind)),
				zap.String("loan_id", n.LoanID),
				zap.Error(err))
		}
	}
}
