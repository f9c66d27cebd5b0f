package domain

import "errors"

// Таксономия ошибок ядра. Хендлеры маппят их в HTTP-коды через errors.Is.
var (
	ErrLoanNotFound  = errors.New("loan not found")
	ErrAgentNotFound = errors.New("agent not found")

	// ErrNotAuthorized — заявка назначена другому агенту
	ErrNotAuthorized = errors.New("loan is not assigned to this agent")

	// ErrInvalidState — переход из недопустимого статуса (в том числе из терминального)
	ErrInvalidState = errors.New("loan is not in a reviewable state")

	// ErrNoEligibleAgent — не нашлось активного агента с подходящим лимитом.
	// Для прохода обработки это не ошибка: заявка остается UNDER_REVIEW без агента.
	ErrNoEligibleAgent = errors.New("no eligible agent available")

	ErrInvalidDecision = errors.New("unknown agent decision")
)
