package service

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/loan-origination-engine/internal/domain"
	"github.com/xela07ax/loan-origination-engine/internal/infra"
)

// RedisSignaler транслирует терминальные решения по заявкам в Pub/Sub,
// чтобы внешние дашборды видели их в реальном времени.
// Сигнал fire-and-forget: Redis недоступен — пишем Warn и живем дальше.
type RedisSignaler struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewRedisSignaler(rdb *redis.Client, logger *zap.Logger) *RedisSignaler {
	return &RedisSignaler{
		rdb:    rdb,
		logger: logger.Named("decision-signal"),
	}
}

func (s *RedisSignaler) SignalDecision(ctx context.Context, loanID string, status domain.LoanStatus) {
	payload := fmt.Sprintf("%s:%s", loanID, status)
	if err := s.rdb.Publish(ctx, infra.RedisChanDecisions, payload).Err(); err != nil {
		s.logger.Warn("decision signal delivery failed",
			zap.String("loan_id", loanID),
			zap.Error(err))
	}
}
