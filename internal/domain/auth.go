package domain

import "github.com/golang-jwt/jwt/v5"

// AgentClaims — полезная нагрузка токена агента.
// Subject дублирует AgentID для совместимости со стандартными инструментами.
type AgentClaims struct {
	AgentID string `json:"agent_id"`
	jwt.RegisteredClaims
}

// Secure Token Issuing
type TokenRequest struct {
	AgentID string `json:"agent_id"`
	Email   string `json:"email"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"` // Всегда "Bearer"
	ExpiresIn   int64  `json:"expires_in"`
}
