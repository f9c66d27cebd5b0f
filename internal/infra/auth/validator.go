package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/xela07ax/loan-origination-engine/internal/domain"
)

// BaseValidator содержит общую логику выпуска и проверки HS256-токенов агентов.
// Симметричный ключ достаточен: выпуск и проверка живут в одном сервисе.
type BaseValidator struct {
	secret []byte
	ttl    time.Duration
}

func NewBaseValidator(secret string, ttl time.Duration) (*BaseValidator, error) {
	if secret == "" {
		return nil, fmt.Errorf("auth secret is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &BaseValidator{secret: []byte(secret), ttl: ttl}, nil
}

// IssueToken подписывает токен для агента
func (v *BaseValidator) IssueToken(agentID string) (*domain.TokenResponse, error) {
	expiresAt := time.Now().Add(v.ttl)
	claims := &domain.AgentClaims{
		AgentID: agentID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "loan-origination-engine",
			Subject:   agentID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &domain.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(time.Until(expiresAt).Seconds()),
	}, nil
}

// VerifyToken реализует интерфейс auth.TokenValidator.
func (v *BaseValidator) VerifyToken(tokenStr string) (*domain.AgentClaims, error) {
	tokenStr = strings.TrimPrefix(tokenStr, "Bearer ")
	tokenStr = strings.TrimSpace(tokenStr)

	token, err := jwt.ParseWithClaims(tokenStr, &domain.AgentClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*domain.AgentClaims)
	if !ok {
		return nil, fmt.Errorf("invalid claims")
	}

	return claims, nil
}
