package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xela07ax/loan-origination-engine/internal/domain"
	"github.com/xela07ax/loan-origination-engine/internal/infra"
)

// Сколько живет кэш тяжелых аналитических запросов
const statsCacheTTL = time.Minute

// LoanRepository описывает требования сервиса к хранилищу заявок
type LoanRepository interface {
	Create(ctx context.Context, loan *domain.Loan) error
	FindByLoanID(ctx context.Context, loanID string) (*domain.Loan, error)
	FindByStatus(ctx context.Context, status domain.LoanStatus, limit, offset int) ([]*domain.Loan, error)
	CountByStatus(ctx context.Context) (domain.StatusCount, error)
	TopCustomers(ctx context.Context, limit int) ([]domain.TopCustomer, error)
}

type LoanService struct {
	repo   LoanRepository
	rdb    *redis.Client // Кэш аналитики; nil — работаем без кэша
	logger *zap.Logger
}

func NewLoanService(repo LoanRepository, rdb *redis.Client, logger *zap.Logger) *LoanService {
	return &LoanService{
		repo:   repo,
		rdb:    rdb,
		logger: logger.Named("loan-service"),
	}
}

// generateLoanID — внешний идентификатор вида LOAN-3F2A9C01
func generateLoanID() string {
	return "LOAN-" + strings.ToUpper(uuid.New().String()[:8])
}

// SubmitApplication принимает новую заявку. Статус всегда APPLIED:
// решение принимает только фоновый движок.
func (s *LoanService) SubmitApplication(ctx context.Context, customerName, customerPhone string, amount decimal.Decimal, loanType domain.LoanType) (*domain.Loan, error) {
	loan := &domain.Loan{
		LoanID:        generateLoanID(),
		CustomerName:  customerName,
		CustomerPhone: customerPhone,
		Amount:        amount,
		Type:          loanType,
		Status:        domain.StatusApplied,
	}

	if err := s.repo.Create(ctx, loan); err != nil {
		s.logger.Error("failed to persist loan application",
			zap.String("customer", customerName), zap.Error(err))
		return nil, fmt.Errorf("service: could not submit application: %w", err)
	}

	s.logger.Info("loan application submitted",
		zap.String("loan_id", loan.LoanID),
		zap.String("type", string(loanType)),
		zap.String("amount", amount.String()))
	return loan, nil
}

func (s *LoanService) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	return s.repo.FindByLoanID(ctx, loanID)
}

func (s *LoanService) ListByStatus(ctx context.Context, status domain.LoanStatus, page, size int) ([]*domain.Loan, error) {
	if size <= 0 || size > 100 {
		size = 10
	}
	if page < 0 {
		page = 0
	}
	loans, err := s.repo.FindByStatus(ctx, status, size, page*size)
	if err != nil {
		s.logger.Error("failed to list loans", zap.String("status", string(status)), zap.Error(err))
		return nil, fmt.Errorf("service: could not fetch loans: %w", err)
	}
	return loans, nil
}

// StatusCount — гистограмма статусов с минутным кэшем в Redis,
// чтобы не нагружать Postgres агрегатами на каждый запрос дашборда.
func (s *LoanService) StatusCount(ctx context.Context) (domain.StatusCount, error) {
	var counts domain.StatusCount
	if s.cacheGet(ctx, infra.RedisKeyStatusCount, &counts) {
		return counts, nil
	}

	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: could not count loans: %w", err)
	}

	s.cacheSet(ctx, infra.RedisKeyStatusCount, counts)
	return counts, nil
}

// TopCustomers — топ-3 клиентов по одобренным кредитам (тоже через кэш)
func (s *LoanService) TopCustomers(ctx context.Context) ([]domain.TopCustomer, error) {
	var top []domain.TopCustomer
	if s.cacheGet(ctx, infra.RedisKeyTopCustomers, &top) {
		return top, nil
	}

	top, err := s.repo.TopCustomers(ctx, 3)
	if err != nil {
		return nil, fmt.Errorf("service: could not rank customers: %w", err)
	}

	s.cacheSet(ctx, infra.RedisKeyTopCustomers, top)
	return top, nil
}

// cacheGet/cacheSet деградируют в no-op при любой проблеме с Redis:
// кэш — оптимизация, не зависимость.
func (s *LoanService) cacheGet(ctx context.Context, key string, dst interface{}) bool {
	if s.rdb == nil {
		return false
	}
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("stats cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.logger.Warn("stats cache decode failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *LoanService) cacheSet(ctx context.Context, key string, val interface{}) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, raw, statsCacheTTL).Err(); err != nil {
		s.logger.Warn("stats cache write failed", zap.String("key", key), zap.Error(err))
	}
}
