package notify

import (
	"context"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// ReliableSender оборачивает внешний канал доставки в Rate Limiter,
// Circuit Breaker и ретраи с бэкоффом. Доставка остается best-effort:
// исчерпанные ретраи — это ошибка наружу, вызывающий просто логирует дроп.
type ReliableSender struct {
	next    Sender
	cb      *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

func NewReliableSender(next Sender) *ReliableSender {
	// Настройка предохранителя: лежащий SMS-шлюз не должен
	// съедать воркеров диспетчера на таймаутах
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "notify-channel",
		MaxRequests: 3,
		Interval:    5 * time.Second,
		Timeout:     30 * time.Second, // Время, через которое CB попробует "закрыться"
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	// Лимит исходящих: 50 уведомлений в секунду с берстом 10
	limiter := rate.NewLimiter(rate.Limit(50), 10)

	return &ReliableSender{
		next:    next,
		cb:      cb,
		limiter: limiter,
	}
}

func (s *ReliableSender) Send(ctx context.Context, n Notice) error {
	// 1. Rate Limiter
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	// 2. Circuit Breaker + ретраи внутри него
	_, err := s.cb.Execute(func() (interface{}, error) {
		r := retry.New(
			retry.Context(ctx),
			retry.Attempts(3),
		)

		return nil, r.Do(func() error {
			tCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return s.next.Send(tCtx, n)
		})
	})
	return err
}
