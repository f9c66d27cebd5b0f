package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/xela07ax/loan-origination-engine/internal/handler"
	"github.com/xela07ax/loan-origination-engine/internal/infra"
	"github.com/xela07ax/loan-origination-engine/internal/infra/auth"
)

type Server struct {
	router *chi.Mux
	logger *zap.Logger
	cfg    *infra.Config

	// Проверка токенов агентов (HS256)
	authValidator auth.TokenValidator

	// Обработчики бизнес-доменов
	authHandler  *handler.AuthHandler  // /auth/token
	loanHandler  *handler.LoanHandler  // /v1/loans
	agentHandler *handler.AgentHandler // /v1/agents

	// Экспорт метрик (promhttp поверх локального Registry)
	metricsHandler http.Handler
}

// NewServer собирает HTTP-сервер со всеми зависимостями
func NewServer(
	cfg *infra.Config,
	logger *zap.Logger,
	validator auth.TokenValidator,
	authH *handler.AuthHandler,
	loanH *handler.LoanHandler,
	agentH *handler.AgentHandler,
	metricsH http.Handler,
) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		logger:         logger.Named("http-api"),
		cfg:            cfg,
		authValidator:  validator,
		authHandler:    authH,
		loanHandler:    loanH,
		agentHandler:   agentH,
		metricsHandler: metricsH,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware (для всех) ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// --- 2. ПУБЛИЧНЫЕ РОУТЫ ---
	r.Group(func(r chi.Router) {
		// Логин доступен без токена
		r.Post("/auth/token", s.authHandler.Login)

		// Healthcheck для мониторинга
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		// Подача и отслеживание заявок — клиентский периметр, без токена.
		// Клиенты (заемщики) не агенты, им токены не выдаются.
		r.Route("/v1/loans", func(r chi.Router) {
			r.Post("/", s.loanHandler.Submit)             // Подать заявку
			r.Get("/", s.loanHandler.List)                // Список по статусу
			r.Get("/status-count", s.loanHandler.StatusCount)
			r.Get("/customers/top", s.loanHandler.TopCustomers)
			r.Get("/{loanID}", s.loanHandler.Get)
		})

		if s.metricsHandler != nil {
			r.Handle("/metrics", s.metricsHandler)
		}
	})

	// --- 3. ЗАЩИЩЕННЫЙ ПЕРИМЕТР (агенты, требуется HS256 токен) ---
	r.Group(func(r chi.Router) {
		r.Use(auth.NewMiddleware(s.authValidator, s.logger))

		r.Route("/v1/agents", func(r chi.Router) {
			r.Get("/", s.agentHandler.List)    // Список агентов
			r.Post("/", s.agentHandler.Create) // Регистрация агента
			r.Route("/{agentID}", func(r chi.Router) {
				r.Get("/", s.agentHandler.Get) // Карточка агента
				// Решение агента по заявке на ревью
				r.Put("/loans/{loanID}/decision", s.agentHandler.Decide)
			})
		})
	})
}

// ServeHTTP позволяет использовать Server как стандартный http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
