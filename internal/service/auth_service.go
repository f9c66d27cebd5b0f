package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/xela07ax/loan-origination-engine/internal/domain"
	"github.com/xela07ax/loan-origination-engine/internal/infra/auth"
)

// AuthService выпускает токены агентов. Уровень проверки демонстрационный:
// agent_id + зарегистрированный email, без пароля. Для прода сюда встает
// нормальный IdP, контракт VerifyToken не меняется.
type AuthService struct {
	agents    AgentRepository
	validator *auth.BaseValidator
	logger    *zap.Logger
}

func NewAuthService(agents AgentRepository, validator *auth.BaseValidator, logger *zap.Logger) *AuthService {
	return &AuthService{
		agents:    agents,
		validator: validator,
		logger:    logger.Named("auth-service"),
	}
}

func (s *AuthService) GenerateToken(ctx context.Context, agentID, email string) (*domain.TokenResponse, error) {
	agent, err := s.agents.GetByAgentID(ctx, agentID)
	if err != nil || agent == nil {
		// Не раскрываем, существует ли агент
		return nil, errors.New("invalid credentials")
	}

	if !strings.EqualFold(agent.Email, email) {
		s.logger.Warn("token request with wrong email", zap.String("agent_id", agentID))
		return nil, errors.New("invalid credentials")
	}

	if agent.Status != domain.AgentActive {
		s.logger.Warn("token request for non-active agent",
			zap.String("agent_id", agentID),
			zap.String("status", string(agent.Status)))
		return nil, errors.New("agent is not active")
	}

	return s.validator.IssueToken(agent.AgentID)
}

// VerifyToken пробрасывает проверку в BaseValidator (для Middleware)
func (s *AuthService) VerifyToken(tokenStr string) (*domain.AgentClaims, error) {
	return s.validator.VerifyToken(tokenStr)
}
