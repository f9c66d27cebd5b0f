package auth

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/xela07ax/loan-origination-engine/internal/domain"
)

// TokenValidator — интерфейс проверки токена агента
type TokenValidator interface {
	VerifyToken(tokenStr string) (*domain.AgentClaims, error)
}

// Тип для ключа в контексте (избегаем коллизий)
type ctxKey string

const agentIDKey ctxKey = "agent_id"

func NewMiddleware(v TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := v.VerifyToken(authHeader)
			if err != nil {
				logger.Warn("auth failure", zap.Error(err))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			// Прокидываем идентичность агента в контекст
			ctx := context.WithValue(r.Context(), agentIDKey, claims.AgentID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AgentFromContext достает идентичность агента, положенную Middleware
func AgentFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(agentIDKey).(string)
	return id, ok && id != ""
}
