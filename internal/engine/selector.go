package engine

import (
	"math/rand"

	"github.com/xela07ax/loan-origination-engine/internal/domain"
)

// SelectAgent выбирает агента для заявки из уже отфильтрованных кандидатов
// (ACTIVE и лимит покрывает сумму — это забота запроса к хранилищу, не селектора).
//
// Специализация — мягкое предпочтение, не жесткий фильтр: если специалистов
// по категории нет, берем любого из кандидатов, чтобы заявка не зависла.
// Из итогового набора выбираем равновероятно — дешевый advisory load-leveling
// без счетчиков нагрузки на агента.
func SelectAgent(candidates []*domain.Agent, loan *domain.Loan) *domain.Agent {
	if len(candidates) == 0 {
		return nil
	}

	specialized := make([]*domain.Agent, 0, len(candidates))
	for _, a := range candidates {
		if a.Specializes(loan.Type) {
			specialized = append(specialized, a)
		}
	}

	pool := candidates
	if len(specialized) > 0 {
		pool = specialized
	}

	return pool[rand.Intn(len(pool))]
}
