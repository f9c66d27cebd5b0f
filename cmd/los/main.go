package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/loan-origination-engine/internal/engine"
	"github.com/xela07ax/loan-origination-engine/internal/handler"
	"github.com/xela07ax/loan-origination-engine/internal/infra"
	"github.com/xela07ax/loan-origination-engine/internal/infra/auth"
	"github.com/xela07ax/loan-origination-engine/internal/notify"
	"github.com/xela07ax/loan-origination-engine/internal/repository/postgres"
	"github.com/xela07ax/loan-origination-engine/internal/server"
	"github.com/xela07ax/loan-origination-engine/internal/service"
)

func main() {
	// 1. Конфигурация и логгер
	cfg, err := infra.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	// Контекст жизненного цикла фоновых горутин.
	// SIGTERM/SIGINT -> cancel() останавливает планировщик и слушателей.
	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Инфраструктура и ресурсы
	pool, err := postgres.NewPool(appCtx, cfg.Database)
	if err != nil {
		logger.Fatal("failed to init postgres pool", zap.Error(err))
	}
	defer pool.Close()

	// Проверяем соединение с таймаутом
	pingCtx, pingCancel := context.WithTimeout(appCtx, 5*time.Second)
	if err := pool.Ping(pingCtx); err != nil {
		logger.Fatal("database unreachable", zap.Error(err))
	}
	pingCancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	loanRepo := postgres.NewLoanRepo(pool)
	agentRepo := postgres.NewAgentRepo(pool)

	if cfg.Agents.SeedDemo {
		if err := agentRepo.SeedDemoAgents(appCtx, logger); err != nil {
			logger.Fatal("failed to seed demo agents", zap.Error(err))
		}
	}

	// Метрики
	reg := prometheus.NewRegistry()
	metrics := engine.NewMetrics(reg)

	// 3. Уведомления: лог-доставка -> Reliability (Retries, CB, Rate-Limit) -> очередь
	sender := notify.NewReliableSender(notify.NewLogSender(logger))
	dispatcher := notify.NewDispatcher(sender, logger, notify.DispatcherConfig{
		BufferSize: cfg.Notify.BufferSize,
		Workers:    cfg.Notify.Workers,
		BufferFill: metrics.NotifyBufferFill,
		Dropped:    metrics.NotifyDropped,
	})
	dispatcher.Start()

	// 4. Движок обработки заявок
	signaler := service.NewRedisSignaler(rdb, logger)
	ledger := engine.NewLedger()

	processor := engine.NewProcessor(
		loanRepo,
		agentRepo,
		ledger,
		dispatcher,
		signaler,
		metrics,
		logger,
		engine.ProcessorConfig{
			Workers:  cfg.Engine.Workers,
			DelayMin: cfg.Engine.DelayMin,
			DelayMax: cfg.Engine.DelayMax,
		},
	)

	// 5. Сервисный слой и API
	loanService := service.NewLoanService(loanRepo, rdb, logger)
	agentService := service.NewAgentService(loanRepo, agentRepo, dispatcher, signaler, logger)

	validator, err := auth.NewBaseValidator(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	if err != nil {
		logger.Fatal("failed to init token validator", zap.Error(err))
	}
	authService := service.NewAuthService(agentRepo, validator, logger)

	srv := server.NewServer(
		cfg,
		logger,
		authService,
		handler.NewAuthHandler(authService),
		handler.NewLoanHandler(loanService),
		handler.NewAgentHandler(agentService),
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	)

	scheduler := engine.NewScheduler(processor, loanService, logger, cfg.Engine.PassInterval)
	scheduler.Start(appCtx)

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      srv,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("loan origination API started", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	// 6. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")
	cancel() // останавливаем планировщик

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", zap.Error(err))
	}

	// Ждем завершения активного прохода и дожимаем очередь уведомлений
	scheduler.Wait()
	dispatcher.Stop()

	logger.Info("service stopped")
}
