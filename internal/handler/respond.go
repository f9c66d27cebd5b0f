package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xela07ax/loan-origination-engine/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError маппит таксономию ошибок ядра в HTTP-коды.
// tip: Разделяй типы ошибок (404, 403, 409), не отдавай всё как 500
func writeError(w http.ResponseWriter, err error) {
	var code int
	switch {
	case errors.Is(err, domain.ErrLoanNotFound), errors.Is(err, domain.ErrAgentNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrNotAuthorized):
		code = http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidState):
		code = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidDecision):
		code = http.StatusBadRequest
	default:
		code = http.StatusInternalServerError
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
