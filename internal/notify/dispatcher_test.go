package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type recordSender struct {
	mu   sync.Mutex
	got  []Notice
	fail bool
}

func (s *recordSender) Send(_ context.Context, n Notice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("gateway down")
	}
	s.got = append(s.got, n)
	return nil
}

func (s *recordSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

func notice(loanID string) Notice {
	return Notice{Kind: KindProcessingStarted, LoanID: loanID}
}

func TestDispatcher_DeliversAllPublished(t *testing.T) {
	sender := &recordSender{}
	d := NewDispatcher(sender, zap.NewNop(), DispatcherConfig{})

	d.Start()
	d.Publish(notice("LOAN-1"))
	d.Publish(notice("LOAN-2"))
	d.Publish(notice("LOAN-3"))
	d.Stop()

	assert.Equal(t, 3, sender.count())
}

// Stop обязан дочитать буфер: уведомления, принятые до остановки,
// не теряются даже если воркеры еще не стартовали.
func TestDispatcher_StopDrainsBuffer(t *testing.T) {
	sender := &recordSender{}
	d := NewDispatcher(sender, zap.NewNop(), DispatcherConfig{BufferSize: 10})

	for i := 0; i < 5; i++ {
		d.Publish(notice("LOAN-Q"))
	}

	d.Start()
	d.Stop()

	assert.Equal(t, 5, sender.count())
}

func TestDispatcher_PublishAfterStopDoesNotPanic(t *testing.T) {
	sender := &recordSender{}
	d := NewDispatcher(sender, zap.NewNop(), DispatcherConfig{})

	d.Start()
	d.Stop()

	assert.NotPanics(t, func() {
		d.Publish(notice("LOAN-LATE"))
	})
	assert.Equal(t, 0, sender.count())
}

// Load shedding: при переполненном буфере лишние уведомления
// сбрасываются, Publish не блокирует вызывающего.
func TestDispatcher_OverflowSheds(t *testing.T) {
	sender := &recordSender{}
	d := NewDispatcher(sender, zap.NewNop(), DispatcherConfig{BufferSize: 2})

	// Воркеры не запущены — буфер заполняется и переливается
	for i := 0; i < 10; i++ {
		d.Publish(notice("LOAN-OVF"))
	}

	d.Start()
	d.Stop()

	assert.Equal(t, 2, sender.count())
}

// Сбой доставки одного уведомления не валит воркера
func TestDispatcher_DeliveryFailureIsSwallowed(t *testing.T) {
	sender := &recordSender{fail: true}
	d := NewDispatcher(sender, zap.NewNop(), DispatcherConfig{})

	d.Start()
	d.Publish(notice("LOAN-ERR"))
	d.Stop()

	assert.Equal(t, 0, sender.count())
}
