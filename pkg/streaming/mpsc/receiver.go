package mpsc

import (
	"iter"
	"sync/atomic"

	"github.com/eapache/queue"
)

// Receiver is the single consumer handle of a channel. It is not safe for
// concurrent use: exactly one goroutine may call Receive at a time, and
// ownership may only move between goroutines with proper synchronization.
type Receiver[T any] struct {
	_      noCopy
	shared *shared

	// buf is the local buffer. It is only touched by the owning goroutine and
	// is swapped wholesale with the shared queue.
	buf *queue.Queue

	// done is set once end-of-stream has been observed or Close was called.
	done   bool
	closed bool

	// Mirrors of receiver-side state readable from other goroutines.
	buffered atomic.Int64
	received atomic.Int64
}

func newReceiver[T any](sh *shared) *Receiver[T] {
	return &Receiver[T]{
		shared: sh,
		buf:    queue.New(),
	}
}

// Receive returns the next value in the channel, blocking while the channel
// is empty and at least one Sender is open. It returns ok == false once every
// Sender has been closed and all values have been delivered; from then on it
// never blocks and always returns ok == false.
func (r *Receiver[T]) Receive() (value T, ok bool) {
	if r.buf.Length() > 0 {
		return r.pop(), true
	}
	if r.done {
		return value, false
	}

	sh := r.shared
	sh.mu.Lock()
	sh.lockAcquisitions++
	for {
		if n := sh.queue.Length(); n > 0 {
			// r.buf is empty here, so the shared queue gets an empty container
			// back and keeps no references to delivered values.
			sh.queue, r.buf = r.buf, sh.queue
			sh.swaps++
			sh.inst.setPending(0)
			sh.mu.Unlock()

			r.buffered.Store(int64(n))
			sh.inst.onSwap(n)
			return r.pop(), true
		}
		if sh.senders == 0 {
			sh.mu.Unlock()
			r.done = true
			return value, false
		}
		sh.waits++
		sh.inst.onWait()
		sh.cond.Wait()
	}
}

func (r *Receiver[T]) pop() T {
	// A nil interface value stored by Send comes back as the zero T.
	v, _ := r.buf.Remove().(T)
	r.buffered.Add(-1)
	r.received.Add(1)
	r.shared.inst.onReceive()
	return v
}

// Buffered returns how many values are already held in the local buffer.
// That many Receive calls are guaranteed to return without locking or
// blocking, which lets consumers build batches cheaply.
func (r *Receiver[T]) Buffered() int {
	return r.buf.Length()
}

// All returns an iterator over received values that stops at end-of-stream.
//
//	for v := range rx.All() {
//		handle(v)
//	}
func (r *Receiver[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, ok := r.Receive()
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// Close releases the Receiver. Values still in its local buffer are dropped,
// values still queued are never observed, and Senders keep working without
// blocking. After Close, Receive reports end-of-stream. Calling Close more
// than once is a no-op. The returned error is always nil.
func (r *Receiver[T]) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.done = true

	dropped := r.buf.Length()
	r.buf = queue.New()
	r.buffered.Store(0)

	sh := r.shared
	sh.mu.Lock()
	sh.receiverClosed = true
	pending := sh.queue.Length()
	sh.mu.Unlock()

	sh.inst.onClose("receiver")
	entry := sh.log.WithField("dropped", dropped).WithField("pending", pending)
	if dropped+pending > 0 {
		entry.Warn("receiver closed with undelivered items")
	} else {
		entry.Debug("receiver closed")
	}
	return nil
}
