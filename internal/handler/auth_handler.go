package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/xela07ax/loan-origination-engine/internal/domain"
)

type AuthService interface {
	GenerateToken(ctx context.Context, agentID, email string) (*domain.TokenResponse, error)
}

type AuthHandler struct {
	service AuthService
}

func NewAuthHandler(s AuthService) *AuthHandler {
	return &AuthHandler{service: s}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.AgentID == "" || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "agent_id and email are required"})
		return
	}

	token, err := h.service.GenerateToken(r.Context(), req.AgentID, req.Email)
	if err != nil {
		// Любой сбой аутентификации — единый 401 без деталей
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	writeJSON(w, http.StatusOK, token)
}
