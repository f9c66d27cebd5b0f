package engine

import "sync"

// Ledger — внутрипроцессный admission control: не дает двум параллельным
// проходам взять одну и ту же заявку. Это не распределенный лок — защита
// действует только в рамках одного инстанса движка.
type Ledger interface {
	// TryAcquire атомарно захватывает слот обработки.
	// true — слот наш; false — заявка уже у кого-то в работе.
	TryAcquire(id string) bool
	// Release освобождает слот. Идемпотентен.
	Release(id string)
}

type memoryLedger struct {
	mu         sync.Mutex
	processing map[string]struct{}
}

func NewLedger() Ledger {
	return &memoryLedger{processing: make(map[string]struct{})}
}

// Проверка и установка под одним локом — check-then-set парой тут быть не может.
func (l *memoryLedger) TryAcquire(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.processing[id]; busy {
		return false
	}
	l.processing[id] = struct{}{}
	return true
}

func (l *memoryLedger) Release(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.processing, id)
}
