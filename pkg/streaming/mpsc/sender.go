package mpsc

import (
	"sync/atomic"
)

// Sender is a producer handle. Any number of goroutines may hold their own
// Sender (obtained with Clone) and send concurrently. Each Sender must be
// closed exactly once when its owner is done; the channel reports
// end-of-stream to the Receiver after the last one is closed and all items
// are drained.
type Sender[T any] struct {
	_      noCopy
	shared *shared
	closed atomic.Bool
}

// Send enqueues value at the tail of the channel and wakes the Receiver.
// It never blocks waiting for capacity and never fails, even when the
// Receiver has been closed (the value is then never observed).
//
// Send panics with ErrSenderClosed if this handle has been closed.
func (s *Sender[T]) Send(value T) {
	if s.closed.Load() {
		panic(ErrSenderClosed)
	}

	sh := s.shared
	sh.mu.Lock()
	sh.queue.Add(value)
	sh.sent++
	sh.inst.setPending(sh.queue.Length())
	sh.mu.Unlock()

	sh.cond.Signal()
	sh.inst.onSend()
}

// Clone returns an additional Sender for the same channel. The new handle
// keeps the channel open until it is closed too.
//
// Clone panics with ErrSenderClosed if this handle has been closed.
func (s *Sender[T]) Clone() *Sender[T] {
	if s.closed.Load() {
		panic(ErrSenderClosed)
	}

	sh := s.shared
	sh.mu.Lock()
	sh.senders++
	senders := sh.senders
	sh.mu.Unlock()

	sh.inst.setSenders(senders)
	return &Sender[T]{shared: sh}
}

// Close releases this handle. Closing the last live Sender wakes a blocked
// Receiver so it can observe end-of-stream. Calling Close more than once is
// a no-op. The returned error is always nil.
func (s *Sender[T]) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	sh := s.shared
	sh.mu.Lock()
	sh.senders--
	senders := sh.senders
	last := senders == 0
	pending := sh.queue.Length()
	sh.mu.Unlock()

	sh.inst.setSenders(senders)
	if last {
		sh.cond.Signal()
		sh.inst.onClose("senders")
		sh.log.WithField("pending", pending).Debug("all senders closed")
	}
	return nil
}
